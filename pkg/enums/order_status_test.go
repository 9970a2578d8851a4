package enums

import "testing"

func TestOrderStatusForwardPath(t *testing.T) {
	path := []OrderStatus{
		OrderStatusPending,
		OrderStatusProcessing,
		OrderStatusShipped,
		OrderStatusDelivered,
	}
	for i := 0; i < len(path)-1; i++ {
		if !path[i].CanTransitionTo(path[i+1]) {
			t.Fatalf("expected %s -> %s to be allowed", path[i], path[i+1])
		}
	}
}

func TestOrderStatusCancellableFromAnywhere(t *testing.T) {
	for _, status := range validOrderStatuses {
		if status == OrderStatusCancelled {
			continue
		}
		if !status.CanTransitionTo(OrderStatusCancelled) {
			t.Fatalf("expected %s -> cancelled to be allowed", status)
		}
	}
}

func TestOrderStatusCancelledReactivation(t *testing.T) {
	if !OrderStatusCancelled.CanTransitionTo(OrderStatusPending) {
		t.Fatal("expected cancelled -> pending to be allowed")
	}
	if OrderStatusCancelled.CanTransitionTo(OrderStatusShipped) {
		t.Fatal("expected cancelled -> shipped to be rejected")
	}
}

func TestOrderStatusNoSkipping(t *testing.T) {
	if OrderStatusPending.CanTransitionTo(OrderStatusShipped) {
		t.Fatal("expected pending -> shipped to be rejected")
	}
	if OrderStatusProcessing.CanTransitionTo(OrderStatusDelivered) {
		t.Fatal("expected processing -> delivered to be rejected")
	}
}
