package workflow

import (
	"testing"

	"github.com/arslant84/syntra.production-sub009/internal/domain/entity"
)

func TestIsTerminal(t *testing.T) {
	tests := []struct {
		status   string
		expected bool
	}{
		{StatusDraft, false},
		{StatusPendingFocal, false},
		{StatusPendingLineManager, false},
		{StatusPendingClerk, false},
		{StatusPendingVisaClerk, false},
		{StatusProcessingEmbassy, false},
		{StatusApproved, true},
		{StatusRejected, true},
		{StatusCancelled, true},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			if got := IsTerminal(tt.status); got != tt.expected {
				t.Errorf("IsTerminal(%q) = %v, want %v", tt.status, got, tt.expected)
			}
		})
	}
}

func TestRouteFor_TransportChain(t *testing.T) {
	tests := []struct {
		status        string
		wantRole      string
		wantCap       string
		wantNext      string
	}{
		{StatusPendingFocal, RoleDepartmentFocal, "approve_transport_focal", StatusPendingLineManager},
		{StatusPendingLineManager, RoleLineManager, "approve_transport_manager", StatusPendingClerk},
		{StatusPendingClerk, RoleClerk, "approve_transport_clerk", StatusApproved},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			route, ok := RouteFor(entity.TypeTransport, tt.status)
			if !ok {
				t.Fatalf("RouteFor(Transport, %q) not found", tt.status)
			}
			if route.StepRole != tt.wantRole {
				t.Errorf("StepRole = %q, want %q", route.StepRole, tt.wantRole)
			}
			if route.Capability != tt.wantCap {
				t.Errorf("Capability = %q, want %q", route.Capability, tt.wantCap)
			}
			if route.NextOnApprove != tt.wantNext {
				t.Errorf("NextOnApprove = %q, want %q", route.NextOnApprove, tt.wantNext)
			}
		})
	}
}

func TestRouteFor_VisaExtendedChain(t *testing.T) {
	// Visa requests pass through the embassy stage before approval
	route, ok := RouteFor(entity.TypeVisa, StatusPendingVisaClerk)
	if !ok {
		t.Fatal("visa clerk route not found")
	}
	if route.NextOnApprove != StatusProcessingEmbassy {
		t.Errorf("NextOnApprove = %q, want %q", route.NextOnApprove, StatusProcessingEmbassy)
	}

	route, ok = RouteFor(entity.TypeVisa, StatusProcessingEmbassy)
	if !ok {
		t.Fatal("embassy route not found")
	}
	if route.NextOnApprove != StatusApproved {
		t.Errorf("NextOnApprove = %q, want %q", route.NextOnApprove, StatusApproved)
	}
}

func TestRouteFor_NoEntry(t *testing.T) {
	tests := []struct {
		name   string
		typ    entity.RequestType
		status string
	}{
		{"terminal status", entity.TypeTransport, StatusApproved},
		{"rejected", entity.TypeClaim, StatusRejected},
		{"draft has no approver", entity.TypeTransport, StatusDraft},
		{"embassy stage only exists for visa", entity.TypeTransport, StatusProcessingEmbassy},
		{"unknown type", entity.RequestType("Flight"), StatusPendingFocal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := RouteFor(tt.typ, tt.status); ok {
				t.Errorf("RouteFor(%s, %q) should have no entry", tt.typ, tt.status)
			}
		})
	}
}

func TestFirstRoute(t *testing.T) {
	for _, typ := range []entity.RequestType{entity.TypeTransport, entity.TypeAccommodation, entity.TypeVisa, entity.TypeClaim} {
		route, ok := FirstRoute(typ)
		if !ok {
			t.Fatalf("FirstRoute(%s) not found", typ)
		}
		if route.Status != StatusPendingFocal {
			t.Errorf("FirstRoute(%s).Status = %q, want %q", typ, route.Status, StatusPendingFocal)
		}
		if route.StepRole != RoleDepartmentFocal {
			t.Errorf("FirstRoute(%s).StepRole = %q, want %q", typ, route.StepRole, RoleDepartmentFocal)
		}
	}

	if _, ok := FirstRoute(entity.RequestType("Flight")); ok {
		t.Error("FirstRoute should fail for unknown type")
	}
}

func TestChain_EndsInApproval(t *testing.T) {
	for typ := range map[entity.RequestType]bool{
		entity.TypeTransport:     true,
		entity.TypeAccommodation: true,
		entity.TypeVisa:          true,
		entity.TypeClaim:         true,
	} {
		chain := Chain(typ)
		if len(chain) == 0 {
			t.Fatalf("Chain(%s) is empty", typ)
		}
		// Each stage must feed the next; the last stage must approve
		for i := 0; i < len(chain)-1; i++ {
			if chain[i].NextOnApprove != chain[i+1].Status {
				t.Errorf("%s: stage %d leads to %q, next stage is %q", typ, i, chain[i].NextOnApprove, chain[i+1].Status)
			}
		}
		if last := chain[len(chain)-1]; last.NextOnApprove != StatusApproved {
			t.Errorf("%s: final stage leads to %q, want %q", typ, last.NextOnApprove, StatusApproved)
		}
	}
}

func TestKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{ErrInvalidTransition, "InvalidTransition"},
		{ErrUnauthorized, "Unauthorized"},
		{ErrStaleTransition, "StaleTransition"},
		{ErrAlreadyRunning, "AlreadyRunning"},
		{ErrNotFound, "NotFound"},
		{ErrPersistence, "PersistenceFailure"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := Kind(tt.err); got != tt.want {
				t.Errorf("Kind() = %q, want %q", got, tt.want)
			}
		})
	}
}
