package service

// Recorder receives ledger activity for metrics.  Implementations must be
// safe for concurrent use.
type Recorder interface {
	CreditsEarned(amount int)
	CreditsSpent(amount int)
	Redeemed(brand string)
	StatusChanged(status string)
}

type nopRecorder struct{}

func (nopRecorder) CreditsEarned(int)    {}
func (nopRecorder) CreditsSpent(int)     {}
func (nopRecorder) Redeemed(string)      {}
func (nopRecorder) StatusChanged(string) {}
