/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package healthz

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"

	libhealthz "github.com/hyperledger/fabric-lib-go/healthz"
	"github.com/pkg/errors"
)

// Component readiness states. A degraded component still accepts traffic.
const (
	StatusOK          = "OK"
	StatusDegraded    = "DEGRADED"
	StatusUnavailable = "UNAVAILABLE"
)

// DefaultTimeout bounds a full round of readiness checks.
const DefaultTimeout = 10 * time.Second

// ReadinessChecker reports whether a component can serve requests.
type ReadinessChecker interface {
	ReadinessCheck(ctx context.Context) error
}

// DetailedChecker is a ReadinessChecker that also describes its state.
type DetailedChecker interface {
	ReadinessChecker
	GetStatus() ComponentStatus
}

type ComponentStatus struct {
	Status  string                 `json:"status"`
	Message string                 `json:"message,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

type DetailedStatus struct {
	Status     string                     `json:"status"`
	Time       time.Time                  `json:"time"`
	Components map[string]ComponentStatus `json:"components"`
}

// ReadinessHandler serves the aggregated readiness of registered components.
// Unlike the liveness handler it reports 503 whenever a component is
// unavailable, so that traffic can be routed elsewhere.
type ReadinessHandler struct {
	mutex    sync.RWMutex
	checkers map[string]ReadinessChecker
	timeout  time.Duration
	now      func() time.Time
}

func NewReadinessHandler() *ReadinessHandler {
	return &ReadinessHandler{
		checkers: map[string]ReadinessChecker{},
		timeout:  DefaultTimeout,
		now:      time.Now,
	}
}

// RegisterChecker adds a checker for component. A component may be
// registered only once.
func (h *ReadinessHandler) RegisterChecker(component string, checker ReadinessChecker) error {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if _, ok := h.checkers[component]; ok {
		return errors.Errorf("'%s' is already registered", component)
	}
	h.checkers[component] = checker
	return nil
}

func (h *ReadinessHandler) DeregisterChecker(component string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	delete(h.checkers, component)
}

func (h *ReadinessHandler) SetTimeout(timeout time.Duration) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.timeout = timeout
}

// RunChecks runs every checker and returns the ones that failed, ordered by
// component name.
func (h *ReadinessHandler) RunChecks(ctx context.Context) []libhealthz.FailedCheck {
	checkers, timeout := h.snapshot()
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var failed []libhealthz.FailedCheck
	for _, component := range sortedComponents(checkers) {
		if err := checkers[component].ReadinessCheck(ctx); err != nil {
			failed = append(failed, libhealthz.FailedCheck{Component: component, Reason: err.Error()})
		}
	}
	return failed
}

// GetDetailedStatus runs every checker and aggregates their states. The
// overall status is the worst component status.
func (h *ReadinessHandler) GetDetailedStatus(ctx context.Context) DetailedStatus {
	checkers, timeout := h.snapshot()
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	status := DetailedStatus{
		Status:     StatusOK,
		Time:       h.now(),
		Components: map[string]ComponentStatus{},
	}
	for _, component := range sortedComponents(checkers) {
		cs := componentStatus(ctx, checkers[component])
		status.Components[component] = cs
		switch {
		case cs.Status == StatusUnavailable:
			status.Status = StatusUnavailable
		case cs.Status == StatusDegraded && status.Status == StatusOK:
			status.Status = StatusDegraded
		}
	}
	return status
}

func componentStatus(ctx context.Context, checker ReadinessChecker) ComponentStatus {
	err := checker.ReadinessCheck(ctx)

	var cs ComponentStatus
	if dc, ok := checker.(DetailedChecker); ok {
		cs = dc.GetStatus()
	} else {
		cs = ComponentStatus{Status: StatusOK}
	}
	if err != nil {
		cs.Status = StatusUnavailable
		cs.Message = err.Error()
	}
	return cs
}

func (h *ReadinessHandler) ServeHTTP(resp http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		resp.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	status := h.GetDetailedStatus(req.Context())
	code := http.StatusOK
	if status.Status == StatusUnavailable {
		code = http.StatusServiceUnavailable
	}

	resp.Header().Set("Content-Type", "application/json")
	resp.WriteHeader(code)
	json.NewEncoder(resp).Encode(status)
}

func (h *ReadinessHandler) snapshot() (map[string]ReadinessChecker, time.Duration) {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	checkers := make(map[string]ReadinessChecker, len(h.checkers))
	for k, v := range h.checkers {
		checkers[k] = v
	}
	return checkers, h.timeout
}

func sortedComponents(checkers map[string]ReadinessChecker) []string {
	components := make([]string, 0, len(checkers))
	for component := range checkers {
		components = append(components, component)
	}
	sort.Strings(components)
	return components
}
