package config

// ReservationConfig bounds the optimistic-concurrency retry loops used when
// claiming a seat or editing an event.
type ReservationConfig struct {
	MaxAttempts int
}

func LoadReservationConfig() ReservationConfig {
	n := envInt("RESERVATION_MAX_ATTEMPTS", 10)
	if n < 1 {
		n = 1
	}
	return ReservationConfig{MaxAttempts: n}
}
