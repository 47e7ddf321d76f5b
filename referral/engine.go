// Package referral implements the three-level upline reward fan-out.
package referral

import (
	"piogold-backend/models"
	"piogold-backend/pricing"
	"piogold-backend/storage"

	"github.com/ethereum/go-ethereum/log"
)

// Per-level reward rates applied to the order's USDT amount.
var levelRates = [3]float64{0.10, 0.05, 0.03}

const maxLevels = len(levelRates)

type Engine struct {
	dbc *storage.DBClient
}

func NewEngine(dbc *storage.DBClient) *Engine {
	return &Engine{dbc: dbc}
}

// Distribute walks the buyer's upline and writes one pending referral record
// per reached level. The PIO conversion uses the order's locked gold price,
// not the current spot price. The walk is iterative, bounded at three levels
// and breaks on revisiting a user, so a malformed referrer graph cannot loop.
// Returns the number of records created.
func (e *Engine) Distribute(orderId, userId string, usdtAmount, goldPrice float64) (int, error) {
	seen := map[string]bool{userId: true}
	created := 0

	currentId := userId
	for level := 1; level <= maxLevels; level++ {
		user, err := e.dbc.UserById(currentId)
		if err != nil {
			if err == storage.ErrNotFound {
				break
			}
			return created, err
		}
		if user.ReferrerId == "" {
			break
		}
		if seen[user.ReferrerId] {
			log.Warn("referral", "cycle detected at", user.ReferrerId, "order", orderId)
			break
		}
		seen[user.ReferrerId] = true

		rewardUsdt := usdtAmount * levelRates[level-1]
		referral := &models.Referral{
			ReferrerId: user.ReferrerId,
			RefereeId:  userId,
			OrderId:    orderId,
			Level:      level,
			UsdtAmount: usdtAmount,
			RewardUsdt: rewardUsdt,
			RewardPio:  pricing.Round8(rewardUsdt / goldPrice),
		}
		if err := e.dbc.CreateReferral(referral); err != nil {
			return created, err
		}
		created++

		currentId = user.ReferrerId
	}

	return created, nil
}
