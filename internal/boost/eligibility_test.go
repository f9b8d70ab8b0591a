package boost

import (
	"context"
	"testing"

	"github.com/darkbyte-app/darkbyte-server/internal/models"
)

func TestCanUserBoostServer(t *testing.T) {
	conn := openTestDB(t)
	svc := NewService(conn)
	ctx := context.Background()

	tier := createTier(t, conn, QualifyingTierName)

	owner := createUser(t, conn, "owner")
	member := createUser(t, conn, "member")
	outsider := createUser(t, conn, "outsider")
	broke := createUser(t, conn, "broke")

	for _, u := range []models.User{owner, member, outsider} {
		m := createMembership(t, conn, u.ID, tier.ID)
		grantUnits(t, svc, u.ID, m.ID)
	}

	server := createServer(t, conn, owner.ID, "Server A")
	if err := conn.Create(&models.ServerMember{ServerID: server.ID, UserID: member.ID}).Error; err != nil {
		t.Fatalf("create server member: %v", err)
	}
	if err := conn.Create(&models.ServerMember{ServerID: server.ID, UserID: broke.ID}).Error; err != nil {
		t.Fatalf("create server member: %v", err)
	}

	cases := []struct {
		name     string
		userID   uint64
		serverID uint64
		want     bool
	}{
		{"owner with available unit", owner.ID, server.ID, true},
		{"member with available unit", member.ID, server.ID, true},
		{"non-member with available unit", outsider.ID, server.ID, false},
		{"member without units", broke.ID, server.ID, false},
		{"missing server", owner.ID, server.ID + 1000, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := svc.CanUserBoostServer(ctx, tc.userID, tc.serverID)
			if err != nil {
				t.Fatalf("eligibility check: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestCanUserBoostServer_AllUnitsAssigned(t *testing.T) {
	conn := openTestDB(t)
	svc := NewService(conn)
	ctx := context.Background()

	tier := createTier(t, conn, QualifyingTierName)
	user := createUser(t, conn, "u1")
	m := createMembership(t, conn, user.ID, tier.ID)
	server := createServer(t, conn, user.ID, "Server A")

	units := grantUnits(t, svc, user.ID, m.ID)
	for _, unit := range units {
		if _, err := svc.ApplyBoost(ctx, unit.ID, server.ID, user.ID); err != nil {
			t.Fatalf("apply: %v", err)
		}
	}

	got, err := svc.CanUserBoostServer(ctx, user.ID, server.ID)
	if err != nil {
		t.Fatalf("eligibility check: %v", err)
	}
	if got {
		t.Fatalf("expected ineligible once all units are assigned")
	}

	if _, err := svc.RemoveBoost(ctx, units[0].ID, user.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	got, err = svc.CanUserBoostServer(ctx, user.ID, server.ID)
	if err != nil {
		t.Fatalf("eligibility check: %v", err)
	}
	if !got {
		t.Fatalf("expected eligible after a unit returned to the pool")
	}
}
