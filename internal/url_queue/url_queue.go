package urlqueue

import (
	"fmt"
	"net/url"
	"sync"
)

// URLQueue is a FIFO of product addresses. Unlike a crawl frontier it keeps
// duplicates: a listing that links the same book twice yields two scrapes.
type URLQueue struct {
	Queue  []string
	Source string
	mu     sync.Mutex
}

func NewURLQueue(source string) *URLQueue {
	return &URLQueue{
		Queue:  make([]string, 0),
		Source: source,
	}
}

func (q *URLQueue) Add(urlStr string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.Queue = append(q.Queue, urlStr)
}

func (q *URLQueue) AddAll(urls []string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.Queue = append(q.Queue, urls...)
}

func (q *URLQueue) Get() (string, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.Queue) == 0 {
		return "", false
	}
	url := q.Queue[0]
	q.Queue = q.Queue[1:]
	return url, true
}

func (q *URLQueue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.Queue)
}

// PageURL builds the address of catalog listing page index from the base
// address and a template such as "page-%d.html".
func PageURL(baseURL, template string, index int) (string, error) {
	return ResolveReference(baseURL, fmt.Sprintf(template, index))
}

// ResolveReference resolves href against baseURL. baseURL must be absolute.
func ResolveReference(baseURL, href string) (string, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	if !base.IsAbs() {
		return "", fmt.Errorf("base url %q is not absolute", baseURL)
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(ref).String(), nil
}
