package enums

import "testing"

func TestParseRole(t *testing.T) {
	cases := map[string]Role{
		"VENDOR":       RoleVendor,
		"admin":        RoleAdmin,
		" SuperAdmin ": RoleSuperadmin,
	}
	for raw, want := range cases {
		got, err := ParseRole(raw)
		if err != nil {
			t.Fatalf("ParseRole(%q) unexpected error: %v", raw, err)
		}
		if got != want {
			t.Fatalf("ParseRole(%q) = %q, want %q", raw, got, want)
		}
	}
	if _, err := ParseRole("OWNER"); err == nil {
		t.Fatal("expected unknown role to fail")
	}
	if Role("BUYER").IsValid() {
		t.Fatal("unknown role should not be valid")
	}
}

func TestOrderStatusTerminal(t *testing.T) {
	if OrderStatusPending.IsTerminal() || OrderStatusApproved.IsTerminal() {
		t.Fatal("pending and approved are not terminal")
	}
	if !OrderStatusRejected.IsTerminal() || !OrderStatusCompleted.IsTerminal() {
		t.Fatal("rejected and completed are terminal")
	}
	if _, err := ParseOrderStatus("posted"); err == nil {
		t.Fatal("posted is a visibility flag, not a status")
	}
}

func TestOrderDecision(t *testing.T) {
	d, err := ParseOrderDecision("Approve")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.TargetStatus() != OrderStatusApproved {
		t.Fatalf("approve should target approved, got %s", d.TargetStatus())
	}
	d, err = ParseOrderDecision("reject")
	if err != nil || d.TargetStatus() != OrderStatusRejected {
		t.Fatalf("reject should target rejected, got %s (%v)", d.TargetStatus(), err)
	}
	if _, err := ParseOrderDecision("post"); err == nil {
		t.Fatal("post is not a decision")
	}
}

func TestQuotationEnums(t *testing.T) {
	if _, err := ParseQuotationCategory("Supplies"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ParseQuotationCategory("supplies"); err == nil {
		t.Fatal("categories are case sensitive")
	}
	if !QuotationStatusPending.IsValid() || QuotationStatus("completed").IsValid() {
		t.Fatal("unexpected quotation status validity")
	}
}
