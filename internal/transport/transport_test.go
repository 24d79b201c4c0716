package transport

import (
	"net/http"
	"strings"
	"testing"
	"time"
)

func TestRoundTripRejectsPlaintext(t *testing.T) {
	rt := NewChromeTransport(time.Second)

	req, err := http.NewRequest("GET", "http://store.example.com/products", nil)
	if err != nil {
		t.Fatal(err)
	}

	resp, err := rt.RoundTrip(req)
	if err == nil {
		resp.Body.Close()
		t.Fatal("expected an error for a non-https request")
	}
	if !strings.Contains(err.Error(), "non-https") {
		t.Errorf("error = %v, want mention of non-https", err)
	}
}

func TestDialErrorsNameTheTarget(t *testing.T) {
	rt := NewChromeTransport(50 * time.Millisecond)

	req, err := http.NewRequest("GET", "https://127.0.0.1:1/graphql.json", nil)
	if err != nil {
		t.Fatal(err)
	}

	resp, err := rt.RoundTrip(req)
	if err == nil {
		resp.Body.Close()
		t.Fatal("expected a dial error for a closed port")
	}
}
