package services

import (
	"time"

	"github.com/yeremiapane/ordersystem/archive"
	"github.com/yeremiapane/ordersystem/config"
	"gorm.io/gorm"
)

// Options configures the service graph built by New.
type Options struct {
	Schedule        config.Schedule
	Sink            archive.Sink
	ArchiveTimeout  time.Duration
	StrictDiscounts bool
}

// Services is the full set of ordering services sharing one database.
type Services struct {
	Carts          *CartService
	Payments       *PaymentService
	PaymentMonitor *PaymentMonitor
	Discounts      *DiscountService
	Availability   *AvailabilityService
	Archiver       *ArchiveService
	Orders         *OrderService
}

func New(db *gorm.DB, opts Options) *Services {
	if opts.Schedule == nil {
		opts.Schedule = config.DefaultSchedule()
	}
	s := &Services{
		Carts:          NewCartService(db),
		Payments:       NewPaymentService(db),
		PaymentMonitor: NewPaymentMonitor(db),
		Discounts:      NewDiscountService(db),
		Availability:   NewAvailabilityService(db, opts.Schedule),
		Archiver:       NewArchiveService(opts.Sink, opts.ArchiveTimeout),
	}
	s.Orders = NewOrderService(db, OrderServiceDeps{
		Carts:           s.Carts,
		Payments:        s.Payments,
		Discounts:       s.Discounts,
		Availability:    s.Availability,
		Archiver:        s.Archiver,
		StrictDiscounts: opts.StrictDiscounts,
	})
	return s
}
