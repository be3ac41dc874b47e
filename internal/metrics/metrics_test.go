package metrics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveAccount(t *testing.T) {
	before := testutil.ToFloat64(accountOps.WithLabelValues("login", ResultError))
	ObserveAccount("login", errors.New("bad password"))
	ObserveAccount("login", nil)

	assert.Equal(t, before+1, testutil.ToFloat64(accountOps.WithLabelValues("login", ResultError)))
	assert.GreaterOrEqual(t, testutil.ToFloat64(accountOps.WithLabelValues("login", ResultOK)), 1.0)
}

func TestObserveContact(t *testing.T) {
	before := testutil.ToFloat64(contactOps.WithLabelValues("add", ResultOK))
	ObserveContact("add", nil)
	assert.Equal(t, before+1, testutil.ToFloat64(contactOps.WithLabelValues("add", ResultOK)))
}

func TestObserveLookup(t *testing.T) {
	before := testutil.ToFloat64(lookupRequests.WithLabelValues("viacep", ResultOK))
	ObserveLookup("viacep", nil, 20*time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(lookupRequests.WithLabelValues("viacep", ResultOK)))
	assert.GreaterOrEqual(t, testutil.CollectAndCount(lookupDuration), 1)
}

func TestObserveLocate_IgnoresNonPositive(t *testing.T) {
	before := testutil.ToFloat64(locateResults.WithLabelValues("located"))
	ObserveLocate("located", 0)
	ObserveLocate("located", 3)
	assert.Equal(t, before+3, testutil.ToFloat64(locateResults.WithLabelValues("located")))
}

func TestServe_ExposesMetrics(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, addr) }()

	ObserveContact("remove", nil)

	var body string
	require.Eventually(t, func() bool {
		resp, err := http.Get(fmt.Sprintf("http://%s/metrics", addr))
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		b, _ := io.ReadAll(resp.Body)
		body = string(b)
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)
	assert.Contains(t, body, "contactkeeper_contact_operations_total")

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}
}
