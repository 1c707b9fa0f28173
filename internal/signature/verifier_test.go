package signature

import "testing"

func TestVerify(t *testing.T) {
	body := []byte(`{"order_id":"A1","total":20}`)
	secret := "s3cret"

	t.Run("accepts correct signature", func(t *testing.T) {
		if !Verify(body, Sign(body, secret), secret) {
			t.Error("expected signature to verify")
		}
	})

	t.Run("rejects missing signature when secret set", func(t *testing.T) {
		if Verify(body, "", secret) {
			t.Error("expected missing signature to fail")
		}
	})

	t.Run("rejects any single byte body mutation", func(t *testing.T) {
		sig := Sign(body, secret)
		for i := range body {
			mutated := append([]byte(nil), body...)
			mutated[i] ^= 0x01
			if Verify(mutated, sig, secret) {
				t.Fatalf("mutation at byte %d verified", i)
			}
		}
	})

	t.Run("rejects any single byte signature mutation", func(t *testing.T) {
		sig := []byte(Sign(body, secret))
		for i := range sig {
			mutated := append([]byte(nil), sig...)
			mutated[i] ^= 0x01
			if Verify(body, string(mutated), secret) {
				t.Fatalf("mutation at byte %d verified", i)
			}
		}
	})

	t.Run("rejects signature made with another secret", func(t *testing.T) {
		if Verify(body, Sign(body, "other"), secret) {
			t.Error("expected foreign signature to fail")
		}
	})

	t.Run("accepts anything when secret unset", func(t *testing.T) {
		for _, sig := range []string{"", "garbage", Sign(body, secret)} {
			if !Verify(body, sig, "") {
				t.Errorf("expected %q to be accepted without a secret", sig)
			}
		}
	})
}
