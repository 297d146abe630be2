package service

import "time"

// WithClock подменяет генератор реф-кода и часы для тестов
func WithClock(s CheckoutService, refCode func() string, now func() time.Time) CheckoutService {
	cs := s.(*checkoutService)
	cs.refCode = refCode
	cs.now = now
	return cs
}
