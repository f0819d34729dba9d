package content

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/lens-forum/app/domain"
	"github.com/lens-forum/app/util"
	"golang.org/x/time/rate"
)

// Options configure a Client. Zero Rate disables client side rate limiting.
type Options struct {
	BaseURL string
	Timeout time.Duration
	Rate    float64
	Burst   int
	Signer  *Signer
}

// Client is the HTTP implementation of Source
type Client struct {
	BaseURL    string
	HttpClient *http.Client
	limiter    *rate.Limiter
	signer     *Signer
}

var _ Source = (*Client)(nil)

func NewClient(opts Options) *Client {
	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.Rate > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.Rate), burst)
	}
	return &Client{
		BaseURL:    opts.BaseURL,
		HttpClient: &http.Client{Timeout: opts.Timeout},
		limiter:    limiter,
		signer:     opts.Signer,
	}
}

// do is the single helper every call goes through. A non-nil payload is sent
// as JSON; POST requests are signed and carry an idempotency key.
func (c *Client) do(ctx context.Context, method, path string, payload any) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create API request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", util.GetNameAndVersion())
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if method == http.MethodPost {
		req.Header.Set("Idempotency-Key", uuid.NewString())
		if c.signer != nil {
			if err := c.signer.Sign(req, body); err != nil {
				return nil, err
			}
		}
	}

	resp, err := c.HttpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("content api unavailable: %w", err)
	}
	return resp, nil
}

// getJSON decodes a 200 answer into out. notFound selects whether 404 maps to ErrNotFound.
func (c *Client) getJSON(ctx context.Context, path string, out any, notFound bool) error {
	resp, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if notFound && resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return newStatusError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("cannot decode response: %w", err)
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload, out any) error {
	resp, err := c.do(ctx, http.MethodPost, path, payload)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newStatusError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("cannot decode response: %w", err)
	}
	return nil
}

func checkSegment(kind, v string) error {
	if ok, msg := util.IsValidPostId(v); !ok {
		return fmt.Errorf("invalid %s %q: %s", kind, v, msg)
	}
	return nil
}

func pageQuery(pageSize int, cursor string) string {
	q := url.Values{}
	if pageSize > 0 {
		q.Set("pageSize", strconv.Itoa(pageSize))
	}
	if cursor != "" {
		q.Set("cursor", cursor)
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

func (c *Client) FetchThread(ctx context.Context, address string) (domain.Thread, error) {
	const op = "content.FetchThread"

	var thread domain.Thread
	if err := checkSegment("thread address", address); err != nil {
		return thread, fmt.Errorf("%s: %w", op, err)
	}
	if err := c.getJSON(ctx, "/threads/"+address, &thread, true); err != nil {
		return thread, fmt.Errorf("%s: %w", op, err)
	}
	return thread, nil
}

func (c *Client) FetchReply(ctx context.Context, id string) (domain.Reply, error) {
	const op = "content.FetchReply"

	var reply domain.Reply
	if err := checkSegment("reply id", id); err != nil {
		return reply, fmt.Errorf("%s: %w", op, err)
	}
	if err := c.getJSON(ctx, "/replies/"+id, &reply, true); err != nil {
		return reply, fmt.Errorf("%s: %w", op, err)
	}
	return reply, nil
}

func (c *Client) FetchRepliesByParent(ctx context.Context, parentId, thread string) ([]domain.Reply, error) {
	const op = "content.FetchRepliesByParent"

	if err := checkSegment("reply id", parentId); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	path := "/replies/" + parentId + "/children?" + url.Values{"thread": {thread}}.Encode()

	var replies []domain.Reply
	if err := c.getJSON(ctx, path, &replies, false); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return replies, nil
}

func (c *Client) FetchRepliesPaginated(ctx context.Context, thread string, pageSize int, cursor string) (domain.RepliesPage, error) {
	const op = "content.FetchRepliesPaginated"

	var page domain.RepliesPage
	if err := checkSegment("thread address", thread); err != nil {
		return page, fmt.Errorf("%s: %w", op, err)
	}
	path := "/threads/" + thread + "/replies" + pageQuery(pageSize, cursor)
	if err := c.getJSON(ctx, path, &page, false); err != nil {
		return page, fmt.Errorf("%s: %w", op, err)
	}
	return page, nil
}

func (c *Client) FetchThreads(ctx context.Context, community string, pageSize int, cursor string) (domain.ThreadsPage, error) {
	const op = "content.FetchThreads"

	var page domain.ThreadsPage
	if err := checkSegment("community address", community); err != nil {
		return page, fmt.Errorf("%s: %w", op, err)
	}
	path := "/communities/" + community + "/threads" + pageQuery(pageSize, cursor)
	if err := c.getJSON(ctx, path, &page, false); err != nil {
		return page, fmt.Errorf("%s: %w", op, err)
	}
	return page, nil
}

func (c *Client) CreateThread(ctx context.Context, community string, req domain.CreateThreadRequest) (domain.Thread, error) {
	const op = "content.CreateThread"

	var thread domain.Thread
	if err := checkSegment("community address", community); err != nil {
		return thread, fmt.Errorf("%s: %w", op, err)
	}
	if err := c.postJSON(ctx, "/communities/"+community+"/threads", req, &thread); err != nil {
		return thread, fmt.Errorf("%s: %w", op, err)
	}
	return thread, nil
}

func (c *Client) CreateReply(ctx context.Context, parentId string, req domain.CreateReplyRequest) (domain.Reply, error) {
	const op = "content.CreateReply"

	var reply domain.Reply
	if err := checkSegment("parent id", parentId); err != nil {
		return reply, fmt.Errorf("%s: %w", op, err)
	}
	if err := c.postJSON(ctx, "/replies/"+parentId+"/children", req, &reply); err != nil {
		return reply, fmt.Errorf("%s: %w", op, err)
	}
	return reply, nil
}

func (c *Client) Vote(ctx context.Context, postId, account string, vote domain.Vote) error {
	const op = "content.Vote"

	if err := checkSegment("post id", postId); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	payload := struct {
		Reaction domain.Vote `json:"reaction"`
		Account  string      `json:"account,omitempty"`
	}{vote, account}
	if err := c.postJSON(ctx, "/posts/"+postId+"/reactions", payload, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (c *Client) LookupReputation(ctx context.Context, wallet, account string) (domain.Reputation, error) {
	const op = "content.LookupReputation"

	var rep domain.Reputation
	path := "/reputation?" + url.Values{"wallet": {wallet}, "account": {account}}.Encode()
	if err := c.getJSON(ctx, path, &rep, false); err != nil {
		return rep, fmt.Errorf("%s: %w", op, err)
	}
	return rep, nil
}
