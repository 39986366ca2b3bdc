package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/d60-Lab/inkwell/internal/search"
	"github.com/d60-Lab/inkwell/pkg/logger"
)

type indexAction int

const (
	actionIndex indexAction = iota + 1
	actionDelete
)

type indexJob struct {
	action indexAction
	doc    search.PostDoc
	postID string
}

// SearchIndexer 本地异步索引执行器：写路径只入队，不阻塞请求。
// 队列满时丢弃并告警，搜索结果允许短暂滞后。
type SearchIndexer struct {
	idx *search.Index
	ch  chan indexJob
}

func NewSearchIndexer(idx *search.Index, queueSize int) *SearchIndexer {
	if queueSize <= 0 {
		queueSize = 4096
	}
	return &SearchIndexer{idx: idx, ch: make(chan indexJob, queueSize)}
}

func (s *SearchIndexer) Start(workers int) func(context.Context) error {
	if workers <= 0 {
		workers = 2
	}
	stopCh := make(chan struct{})
	for i := 0; i < workers; i++ {
		go func() {
			for {
				select {
				case job := <-s.ch:
					ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					switch job.action {
					case actionIndex:
						if err := s.idx.IndexDoc(ctx, job.doc); err != nil {
							logger.Warn("index post failed", zap.String("post", job.doc.ID), zap.Error(err))
						}
					case actionDelete:
						if err := s.idx.DeleteDoc(ctx, job.postID); err != nil {
							logger.Warn("deindex post failed", zap.String("post", job.postID), zap.Error(err))
						}
					}
					cancel()
				case <-stopCh:
					return
				}
			}
		}()
	}
	return func(ctx context.Context) error {
		close(stopCh)
		// 等待队列自然排空一小段时间
		timeout := time.After(2 * time.Second)
		for {
			select {
			case <-timeout:
				return nil
			default:
				if len(s.ch) == 0 {
					return nil
				}
				time.Sleep(50 * time.Millisecond)
			}
		}
	}
}

func (s *SearchIndexer) EnqueueIndex(doc search.PostDoc) {
	if s == nil {
		return
	}
	select {
	case s.ch <- indexJob{action: actionIndex, doc: doc}:
	default:
		logger.Warn("indexer queue full, drop index", zap.String("post", doc.ID))
	}
}

func (s *SearchIndexer) EnqueueDelete(postID string) {
	if s == nil {
		return
	}
	select {
	case s.ch <- indexJob{action: actionDelete, postID: postID}:
	default:
		logger.Warn("indexer queue full, drop delete", zap.String("post", postID))
	}
}

// QueueLen 返回当前队列长度（采样值）。
func (s *SearchIndexer) QueueLen() int {
	if s == nil {
		return 0
	}
	return len(s.ch)
}
