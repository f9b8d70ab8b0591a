package boost

import (
	"context"
	"errors"
	"testing"

	"github.com/darkbyte-app/darkbyte-server/internal/models"
	"pgregory.net/rapid"
)

// TestBoostLevelMatchesAssignedUnits drives random apply/remove sequences,
// including invalid ones, and checks after every operation that each server's
// counter equals the sum of unit values assigned to it.
func TestBoostLevelMatchesAssignedUnits(t *testing.T) {
	conn := openTestDB(t)
	svc := NewService(conn)
	ctx := context.Background()

	rapid.Check(t, func(rt *rapid.T) {
		for _, table := range []string{"boost_units", "server_members", "servers", "memberships", "tiers", "users"} {
			if err := conn.Exec("DELETE FROM " + table).Error; err != nil {
				rt.Fatalf("reset %s: %v", table, err)
			}
		}

		tier := models.Tier{Name: QualifyingTierName, IsEnabled: true}
		if err := conn.Create(&tier).Error; err != nil {
			rt.Fatalf("create tier: %v", err)
		}

		var userIDs []uint64
		var unitIDs []uint64
		for _, name := range []string{"alice", "bob"} {
			user := models.User{Username: name, Email: name + "@test.local", Password: "x", Active: true}
			if err := conn.Create(&user).Error; err != nil {
				rt.Fatalf("create user: %v", err)
			}
			userIDs = append(userIDs, user.ID)

			m := models.Membership{UserID: user.ID, TierID: tier.ID}
			if err := conn.Create(&m).Error; err != nil {
				rt.Fatalf("create membership: %v", err)
			}
			units, errGrant := svc.GrantInitialBoosts(ctx, user.ID, m.ID)
			if errGrant != nil {
				rt.Fatalf("grant: %v", errGrant)
			}
			for _, unit := range units {
				unitIDs = append(unitIDs, unit.ID)
			}
		}

		var serverIDs []uint64
		for _, name := range []string{"s1", "s2", "s3"} {
			server := models.Server{Name: name, OwnerUserID: userIDs[0]}
			if err := conn.Create(&server).Error; err != nil {
				rt.Fatalf("create server: %v", err)
			}
			serverIDs = append(serverIDs, server.ID)
		}
		// A server id that never exists, to exercise the not-found path.
		missingServerID := serverIDs[len(serverIDs)-1] + 1000

		steps := rapid.IntRange(1, 25).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			unitID := rapid.SampledFrom(unitIDs).Draw(rt, "unit")
			userID := rapid.SampledFrom(userIDs).Draw(rt, "user")

			var errOp error
			if rapid.Bool().Draw(rt, "apply") {
				serverID := rapid.SampledFrom(append([]uint64{missingServerID}, serverIDs...)).Draw(rt, "server")
				_, errOp = svc.ApplyBoost(ctx, unitID, serverID, userID)
			} else {
				_, errOp = svc.RemoveBoost(ctx, unitID, userID)
			}
			if errOp != nil &&
				!errors.Is(errOp, ErrBoostNotAvailable) &&
				!errors.Is(errOp, ErrBoostNotAssigned) &&
				!errors.Is(errOp, ErrServerNotFound) {
				rt.Fatalf("unexpected operation error: %v", errOp)
			}

			for _, serverID := range serverIDs {
				var server models.Server
				if err := conn.First(&server, serverID).Error; err != nil {
					rt.Fatalf("load server: %v", err)
				}
				var assigned int64
				if err := conn.Model(&models.BoostUnit{}).
					Select("COALESCE(SUM(value), 0)").
					Where("server_id = ? AND is_active = ?", serverID, true).
					Scan(&assigned).Error; err != nil {
					rt.Fatalf("sum assigned units: %v", err)
				}
				if int64(server.BoostLevel) != assigned {
					rt.Fatalf("server %d: boost_level %d != assigned unit sum %d", serverID, server.BoostLevel, assigned)
				}
			}
		}
	})
}
