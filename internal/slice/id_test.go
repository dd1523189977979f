package slice

import (
	"strings"
	"testing"
)

func TestComputeIDDeterministic(t *testing.T) {
	a := ComputeID("src/Order.java", KindClass, "Order", 1)
	b := ComputeID("src/Order.java", KindClass, "Order", 1)

	if a != b {
		t.Errorf("same inputs produced different ids: %s vs %s", a, b)
	}
}

func TestComputeIDFormat(t *testing.T) {
	id := ComputeID("src/Order.java", KindMethod, "Order.total", 10)

	if !strings.HasPrefix(id, "dg:method:") {
		t.Errorf("id = %q, want dg:method: prefix", id)
	}
	// blake2b-256 hex digest after the prefix
	if got := len(strings.TrimPrefix(id, "dg:method:")); got != 64 {
		t.Errorf("digest length = %d, want 64", got)
	}
}

func TestComputeIDDistinguishesInputs(t *testing.T) {
	base := ComputeID("src/Order.java", KindMethod, "Order.total", 10)

	variants := []string{
		ComputeID("src/Invoice.java", KindMethod, "Order.total", 10),
		ComputeID("src/Order.java", KindClass, "Order.total", 10),
		ComputeID("src/Order.java", KindMethod, "Order.subtotal", 10),
		ComputeID("src/Order.java", KindMethod, "Order.total", 11),
	}
	for i, v := range variants {
		if v == base {
			t.Errorf("variant %d collided with base id", i)
		}
	}
}

// Two files can declare identical classes with identical spans; the path
// component must keep their ids distinct.
func TestComputeIDNoCrossFileCollision(t *testing.T) {
	a := ComputeID("a/Util.java", KindClass, "Util", 1)
	b := ComputeID("b/Util.java", KindClass, "Util", 1)

	if a == b {
		t.Errorf("identical declarations in different files share id %s", a)
	}
}
