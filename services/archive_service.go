package services

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/ordersystem/archive"
	"github.com/yeremiapane/ordersystem/utils"
)

// ArchiveService mirrors placed orders to an archive.Sink in the
// background. Failures are logged and never reach the caller.
type ArchiveService struct {
	sink    archive.Sink
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewArchiveService(sink archive.Sink, timeout time.Duration) *ArchiveService {
	if sink == nil {
		sink = archive.NoopSink{}
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &ArchiveService{sink: sink, timeout: timeout}
}

// ArchiveOrder schedules order for archival and returns immediately.
func (s *ArchiveService) ArchiveOrder(ctx context.Context, order *OrderResponse) {
	blob, err := json.Marshal(order)
	if err != nil {
		utils.ErrorLogger.WithField("orderId", order.OrderID).Errorf("failed to encode order for archive: %v", err)
		return
	}

	// The request may finish before the write does.
	ctx = context.WithoutCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				utils.ErrorLogger.WithField("orderId", order.OrderID).Errorf("archive sink panicked: %v", r)
			}
		}()
		ctx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		log := utils.InfoLogger.WithFields(logrus.Fields{"orderId": order.OrderID})
		if err := s.sink.Put(ctx, order.OrderID, blob); err != nil {
			utils.ErrorLogger.WithField("orderId", order.OrderID).Errorf("failed to archive order: %v", err)
			return
		}
		log.Info("order archived")
	}()
}

// Wait blocks until every scheduled archive write has finished.
func (s *ArchiveService) Wait() {
	s.wg.Wait()
}
