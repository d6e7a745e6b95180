package mocks

import (
	"context"
	"time"

	"github.com/bnema/daily-fortune/internal/domain"
	"github.com/bnema/daily-fortune/internal/ports"
	"github.com/stretchr/testify/mock"
)

type testingT interface {
	mock.TestingT
	Cleanup(func())
}

type MockAlmanacProvider struct {
	mock.Mock
}

var _ ports.AlmanacProvider = (*MockAlmanacProvider)(nil)

func NewMockAlmanacProvider(t testingT) *MockAlmanacProvider {
	m := &MockAlmanacProvider{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockAlmanacProvider) FetchAlmanac(ctx context.Context, date time.Time) (domain.AlmanacRecord, error) {
	args := m.Called(ctx, date)
	return args.Get(0).(domain.AlmanacRecord), args.Error(1)
}

type MockConstellationProvider struct {
	mock.Mock
}

var _ ports.ConstellationProvider = (*MockConstellationProvider)(nil)

func NewMockConstellationProvider(t testingT) *MockConstellationProvider {
	m := &MockConstellationProvider{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockConstellationProvider) FetchConstellation(ctx context.Context, sign domain.Sign, date time.Time) (domain.ConstellationRecord, error) {
	args := m.Called(ctx, sign, date)
	return args.Get(0).(domain.ConstellationRecord), args.Error(1)
}

type MockQuoteProvider struct {
	mock.Mock
}

var _ ports.QuoteProvider = (*MockQuoteProvider)(nil)

func NewMockQuoteProvider(t testingT) *MockQuoteProvider {
	m := &MockQuoteProvider{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockQuoteProvider) FetchQuote(ctx context.Context) (domain.Quote, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.Quote), args.Error(1)
}
