package kanachu

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travigo/busboard/pkg/ctdf"
	"golang.org/x/text/encoding/japanese"
)

func shiftJISServer(t *testing.T, body string, status int) *httptest.Server {
	encoded, err := japanese.ShiftJIS.NewEncoder().String(body)
	require.NoError(t, err)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "18137", r.URL.Query().Get("fNO"))
		assert.Equal(t, "18100", r.URL.Query().Get("tNO"))

		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(status)
		w.Write([]byte(encoded))
	}))
	t.Cleanup(server.Close)

	return server
}

func TestGetApproachInfo(t *testing.T) {
	server := shiftJISServer(t, approachPage, http.StatusOK)
	client := NewClient(server.URL, 5*time.Second)

	records, err := client.GetApproachInfo(context.Background(), ctdf.RouteQuery{
		Key:            "university",
		FromStopCode:   "18137",
		ToStopCode:     "18100",
		OriginStopName: "産業能率大学",
	})
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "伊勢原駅北口", records[0].Destination)
	assert.Equal(t, "16:25頃発車します", records[0].RawStatusText)
	for _, record := range records {
		assert.Equal(t, "university", record.RouteKey)
		assert.Equal(t, "産業能率大学", record.OriginStopName)
	}
}

func TestFetchInvalidBytesAreReplaced(t *testing.T) {
	encoded, err := japanese.ShiftJIS.NewEncoder().String(`<div class="inner2 pa01"><h3 class="heading3">伊12</h3><div class="wrap"><div class="col02"><div class="frameBox03"><p class="title01">16:25発予定`)
	require.NoError(t, err)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(encoded))
		w.Write([]byte{0x81, 0x20})
		w.Write([]byte("</p></div></div></div></div>"))
	}))
	defer server.Close()

	records, err := NewClient(server.URL, time.Second).GetApproachInfo(context.Background(), ctdf.RouteQuery{Key: "a", FromStopCode: "1", ToStopCode: "2"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Contains(t, records[0].RawStatusText, "16:25発予定")
	assert.Contains(t, records[0].RawStatusText, "�")
}

func TestGetApproachInfoHTTPError(t *testing.T) {
	server := shiftJISServer(t, "error", http.StatusServiceUnavailable)

	_, err := NewClient(server.URL, time.Second).GetApproachInfo(context.Background(), ctdf.RouteQuery{
		Key:          "university",
		FromStopCode: "18137",
		ToStopCode:   "18100",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
	assert.NotErrorIs(t, err, ctdf.ErrUpstreamShape)
}

func TestGetApproachInfoLayoutChanged(t *testing.T) {
	server := shiftJISServer(t, "<html><body>メンテナンス中</body></html>", http.StatusOK)

	_, err := NewClient(server.URL, time.Second).GetApproachInfo(context.Background(), ctdf.RouteQuery{
		Key:          "university",
		FromStopCode: "18137",
		ToStopCode:   "18100",
	})
	assert.ErrorIs(t, err, ErrLayoutChanged)
}

func TestGetApproachInfoTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	_, err := NewClient(server.URL, 20*time.Millisecond).GetApproachInfo(context.Background(), ctdf.RouteQuery{Key: "a"})
	assert.Error(t, err)
}
