// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aleutian-labs/vocabcat/services/vocabcat/exposure"
	"github.com/aleutian-labs/vocabcat/services/vocabcat/service"
)

func doGET(r http.Handler, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandleStatsReflectsBank(t *testing.T) {
	svc := service.New(fastConfig(), testBank(), nil)
	router := setupTestRouter(svc)

	w := doGET(router, "/v1/admin/stats")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var stats service.AdminStats
	if err := json.Unmarshal(w.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.BankSize != 200 {
		t.Fatalf("bank size = %d, want 200", stats.BankSize)
	}
}

func TestHandleExposureCoversWholeBank(t *testing.T) {
	svc := service.New(fastConfig(), testBank(), nil)
	router := setupTestRouter(svc)

	w := doGET(router, "/v1/admin/exposure")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var stats exposure.Stats
	if err := json.Unmarshal(w.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode exposure: %v", err)
	}
	if len(stats.All) != 200 {
		t.Fatalf("exposure covers %d items, want 200", len(stats.All))
	}
}

func TestHandleExposureExpansion(t *testing.T) {
	svc := service.New(fastConfig(), testBank(), nil)
	router := setupTestRouter(svc)

	w := doGET(router, "/v1/admin/exposure/expansion")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestHandleRecalibrateWithNoObservationsSkips(t *testing.T) {
	svc := service.New(fastConfig(), testBank(), nil)
	router := setupTestRouter(svc)

	before := svc.Bank().Version()
	w := doJSON(router, http.MethodPost, "/v1/admin/recalibrate", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var res service.RecalibrateResult
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode recalibrate: %v", err)
	}
	if res.NewVersion != before {
		t.Fatalf("bank version changed from %d to %d with no observations", before, res.NewVersion)
	}
}

func TestHandleCleanup(t *testing.T) {
	svc := service.New(fastConfig(), testBank(), nil)
	router := setupTestRouter(svc)

	w := doJSON(router, http.MethodPost, "/v1/admin/cleanup", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}
