package domain

const DefaultDailyLimit = 100

type QuotaConfig struct {
	DailyLimit int `json:"apiDailyLimit"`
}

// Normalize replaces a limit below one with DefaultDailyLimit.
func (c QuotaConfig) Normalize() QuotaConfig {
	if c.DailyLimit < 1 {
		c.DailyLimit = DefaultDailyLimit
	}
	return c
}

type QuotaDecision struct {
	Allowed bool
	Used    uint64
	Limit   int
}

func (d QuotaDecision) Exceeded() bool {
	return !d.Allowed
}
