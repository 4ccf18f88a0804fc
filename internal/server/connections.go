package server

import (
	"container/list"
	"sync"
)

// A concurrency-safe wrapper around container/list for maintaining a
// collection of connected clients.
type clientList struct {
	clients *list.List
	sync.RWMutex
}

func newClientList() *clientList {
	return &clientList{clients: list.New()}
}

func (cl *clientList) add(c *Client) {
	cl.Lock()
	cl.clients.PushBack(c)
	cl.Unlock()
}

func (cl *clientList) remove(c *Client) {
	cl.Lock()
	for elem := cl.clients.Front(); elem != nil; elem = elem.Next() {
		if elem.Value.(*Client) == c {
			cl.clients.Remove(elem)
			break
		}
	}
	cl.Unlock()
}

func (cl *clientList) len() int {
	cl.RLock()
	defer cl.RUnlock()
	return cl.clients.Len()
}
