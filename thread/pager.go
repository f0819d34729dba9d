package thread

import "github.com/lens-forum/app/domain"

// Pager tracks the opaque cursor of the current page. An empty cursor is the first page.
type Pager struct {
	Cursor string
	Info   domain.PageInfo
}

// CanPrev is false on the first page even if the API returned a prev token
func (p Pager) CanPrev() bool {
	return p.Info.Prev != "" && p.Cursor != ""
}

func (p Pager) CanNext() bool {
	return p.Info.Next != ""
}

// Prev moves to the previous page, reporting whether the cursor changed
func (p *Pager) Prev() bool {
	if !p.CanPrev() {
		return false
	}
	p.Cursor = p.Info.Prev
	p.Info = domain.PageInfo{}
	return true
}

func (p *Pager) Next() bool {
	if !p.CanNext() {
		return false
	}
	p.Cursor = p.Info.Next
	p.Info = domain.PageInfo{}
	return true
}

// Update stores the page info of the page that was just loaded
func (p *Pager) Update(info domain.PageInfo) {
	p.Info = info
}

func (p *Pager) Reset() {
	*p = Pager{}
}
