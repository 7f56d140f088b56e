package xengine

import (
	"sync"

	"github.com/gammazero/deque"

	"github.com/xuperchain/xengine/kernel/ledger"
)

// CommitResult outcome of an asynchronous commit
type CommitResult struct {
	Version ledger.Version
	Err     error
}

type commitRequest struct {
	effects *ledger.EffectSet
	done    chan CommitResult
}

// commitQueue 单个worker按提交顺序串行落盘
type commitQueue struct {
	mutex  sync.Mutex
	cond   *sync.Cond
	queue  deque.Deque
	max    int
	closed bool
	commit func(*ledger.EffectSet) (ledger.Version, error)
	exitWG sync.WaitGroup
}

func newCommitQueue(max int, commit func(*ledger.EffectSet) (ledger.Version, error)) *commitQueue {
	q := &commitQueue{max: max, commit: commit}
	q.cond = sync.NewCond(&q.mutex)
	q.exitWG.Add(1)
	go q.loop()
	return q
}

func (q *commitQueue) push(effects *ledger.EffectSet) (<-chan CommitResult, error) {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	if q.closed {
		return nil, ErrEngineClosed
	}
	if q.queue.Len() >= q.max {
		return nil, ErrCommitQueueFull.More("size %d", q.max)
	}
	req := &commitRequest{effects: effects, done: make(chan CommitResult, 1)}
	q.queue.PushBack(req)
	q.cond.Signal()
	return req.done, nil
}

func (q *commitQueue) loop() {
	defer q.exitWG.Done()
	for {
		q.mutex.Lock()
		for q.queue.Len() == 0 && !q.closed {
			q.cond.Wait()
		}
		if q.queue.Len() == 0 {
			q.mutex.Unlock()
			return
		}
		req := q.queue.PopFront().(*commitRequest)
		q.mutex.Unlock()

		version, err := q.commit(req.effects)
		req.done <- CommitResult{Version: version, Err: err}
	}
}

func (q *commitQueue) len() int {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	return q.queue.Len()
}

// close drains pending requests then stops the worker
func (q *commitQueue) close() {
	q.mutex.Lock()
	q.closed = true
	q.cond.Broadcast()
	q.mutex.Unlock()
	q.exitWG.Wait()
}
