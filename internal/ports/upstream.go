package ports

import (
	"context"
	"time"

	"github.com/bnema/daily-fortune/internal/domain"
)

type AlmanacProvider interface {
	FetchAlmanac(ctx context.Context, date time.Time) (domain.AlmanacRecord, error)
}

type ConstellationProvider interface {
	FetchConstellation(ctx context.Context, sign domain.Sign, date time.Time) (domain.ConstellationRecord, error)
}

type QuoteProvider interface {
	FetchQuote(ctx context.Context) (domain.Quote, error)
}
