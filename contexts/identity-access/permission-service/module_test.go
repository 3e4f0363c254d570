package permission_test

import (
	"context"
	"errors"
	"testing"

	permission "pollsbot/contexts/identity-access/permission-service"
	"pollsbot/contexts/identity-access/permission-service/domain/entities"
	domainerrors "pollsbot/contexts/identity-access/permission-service/domain/errors"
)

func TestUnknownUserDefaultsToUseTier(t *testing.T) {
	module := permission.NewInMemoryModule(nil, nil)

	tier, err := module.Service.Resolve(context.Background(), "stranger")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if tier != entities.TierUse {
		t.Fatalf("expected default tier use, got %s", tier)
	}

	// The first resolve registers the user.
	user, found, err := module.Store.GetUser(context.Background(), "stranger")
	if err != nil || !found {
		t.Fatalf("expected registered user, found=%v err=%v", found, err)
	}
	if user.Tier != entities.TierUse {
		t.Fatalf("registered user should carry the use tier, got %s", user.Tier)
	}
}

func TestRequireEnforcesTierOrder(t *testing.T) {
	module := permission.NewInMemoryModule(nil, nil)
	if err := module.Service.Touch(context.Background(), "creator", "creator"); err != nil {
		t.Fatalf("touch failed: %v", err)
	}

	if err := module.Service.Require(context.Background(), "creator", entities.TierCreate); !errors.Is(err, domainerrors.ErrPermissionDenied) {
		t.Fatalf("use-tier user must not pass a create requirement, got %v", err)
	}

	seedAdmin(t, module)
	if err := module.Service.Grant(context.Background(), "root", "creator", entities.TierCreate); err != nil {
		t.Fatalf("grant failed: %v", err)
	}

	if err := module.Service.Require(context.Background(), "creator", entities.TierUse); err != nil {
		t.Fatalf("create tier should satisfy use requirement: %v", err)
	}
	if err := module.Service.Require(context.Background(), "creator", entities.TierCreate); err != nil {
		t.Fatalf("create tier should satisfy create requirement: %v", err)
	}
	if err := module.Service.Require(context.Background(), "creator", entities.TierAdmin); !errors.Is(err, domainerrors.ErrPermissionDenied) {
		t.Fatalf("create tier must not satisfy admin requirement, got %v", err)
	}
}

func TestGrantRequiresAdminActor(t *testing.T) {
	module := permission.NewInMemoryModule(nil, nil)

	err := module.Service.Grant(context.Background(), "plain-user", "target", entities.TierCreate)
	if !errors.Is(err, domainerrors.ErrPermissionDenied) {
		t.Fatalf("non-admin grant should be denied, got %v", err)
	}

	seedAdmin(t, module)
	if err := module.Service.Grant(context.Background(), "root", "target", entities.TierAdmin); err != nil {
		t.Fatalf("admin grant failed: %v", err)
	}
	tier, err := module.Service.Resolve(context.Background(), "target")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if tier != entities.TierAdmin {
		t.Fatalf("expected granted admin tier, got %s", tier)
	}
}

func TestTouchKeepsTier(t *testing.T) {
	module := permission.NewInMemoryModule(nil, nil)
	seedAdmin(t, module)

	if err := module.Service.Touch(context.Background(), "root", "root-renamed"); err != nil {
		t.Fatalf("touch failed: %v", err)
	}
	tier, err := module.Service.Resolve(context.Background(), "root")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if tier != entities.TierAdmin {
		t.Fatalf("touch must not change the tier, got %s", tier)
	}
	user, _, _ := module.Store.GetUser(context.Background(), "root")
	if user.Username != "root-renamed" {
		t.Fatalf("touch should refresh the username, got %q", user.Username)
	}
}

func seedAdmin(t *testing.T, module permission.Module) {
	t.Helper()
	if err := module.Store.SaveUser(context.Background(), entities.User{
		UserID:   "root",
		Username: "root",
		Tier:     entities.TierAdmin,
	}); err != nil {
		t.Fatalf("seed admin failed: %v", err)
	}
}
