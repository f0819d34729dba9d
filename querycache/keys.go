package querycache

// Key builders shared by the UI and the web feeds

func ThreadKey(address string) Key {
	return Key{"thread", address}
}

func RepliesKey(thread, cursor string) Key {
	return Key{"replies", thread, cursor}
}

// AllReplies covers every page of a thread's reply list
func AllReplies(thread string) Key {
	return Key{"replies", thread}
}

func ChildrenKey(thread, parentId string) Key {
	return Key{"children", thread, parentId}
}

// AllChildren covers the children lists of every reply in a thread
func AllChildren(thread string) Key {
	return Key{"children", thread}
}

func ContextKey(replyId string) Key {
	return Key{"reply", replyId}
}

func ThreadsKey(community, cursor string) Key {
	return Key{"threads", community, cursor}
}

func AllThreads(community string) Key {
	return Key{"threads", community}
}

func ReputationKey(wallet, account string) Key {
	return Key{"reputation", wallet, account}
}
