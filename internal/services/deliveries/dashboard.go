package deliveries

import (
	"context"

	"dairy-billing-backend/internal/models"
	"dairy-billing-backend/internal/repository"
	"dairy-billing-backend/internal/services/aggregation"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const recentLimit = 5

type Dashboard struct {
	TotalCustomers  int               `json:"total_customers"`
	TotalEntries    int               `json:"total_entries"`
	TotalSales      decimal.Decimal   `json:"total_sales"`
	UnpaidBills     int64             `json:"unpaid_bills"`
	TodayEntries    []EntryView       `json:"today_entries"`
	RecentCustomers []models.Customer `json:"recent_customers"`
	RecentEntries   []EntryView       `json:"recent_entries"`
}

func (s *DeliveryService) Dashboard(ctx context.Context) (*Dashboard, error) {
	var (
		customers []models.Customer
		entries   []models.Entry
		unpaid    int64
	)
	notPaid := false

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		customers, err = s.customers.List(gctx, "")
		return err
	})
	g.Go(func() error {
		var err error
		entries, err = s.entries.List(gctx, repository.EntryFilter{})
		return err
	})
	g.Go(func() error {
		var err error
		unpaid, err = s.bills.Count(gctx, repository.BillFilter{Paid: &notPaid})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	names := make(map[uuid.UUID]string, len(customers))
	for _, c := range customers {
		names[c.ID] = c.Name
	}
	view := func(list []models.Entry) []EntryView {
		out := make([]EntryView, 0, len(list))
		for _, e := range list {
			out = append(out, EntryView{Entry: e, CustomerName: names[e.CustomerID]})
		}
		return out
	}

	today := models.DateOnly(s.now().UTC())
	var todays []models.Entry
	for _, e := range entries {
		if e.Date.Equal(today) {
			todays = append(todays, e)
		}
	}

	recent := customers
	if len(recent) > recentLimit {
		recent = recent[:recentLimit]
	}

	return &Dashboard{
		TotalCustomers:  len(customers),
		TotalEntries:    len(entries),
		TotalSales:      aggregation.Sum(entries),
		UnpaidBills:     unpaid,
		TodayEntries:    view(todays),
		RecentCustomers: recent,
		RecentEntries:   view(recentlyCreated(entries, recentLimit)),
	}, nil
}
