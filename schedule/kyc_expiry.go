package schedule

import (
	"artvault/internal/handlers/business"

	logger "github.com/sirupsen/logrus"
)

// SweepExpiredKyc moves verified records whose expiry has passed into the
// expired state. Gating already treats them as invalid; the sweep makes the
// stored status match so refresh becomes available.
func SweepExpiredKyc(engine *business.ComplianceEngine) error {
	moved, err := engine.MarkExpired()
	if err != nil {
		logger.Errorf("kyc expiry sweep failed: %v", err)
		return err
	}
	if moved > 0 {
		logger.Infof("kyc expiry sweep moved %d records to expired", moved)
	}
	return nil
}
