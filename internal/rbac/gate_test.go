package rbac

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCheckPendingWhileLoading(t *testing.T) {
	state := GateState{Loading: true, Resolution: Resolution{
		RoleName:    "Analista",
		Permissions: []string{"VerMuestras"},
	}}
	// Loading wins even when the provisional set would allow.
	assert.Equal(t, Pending, Check("VerMuestras", state))
}

func TestCheckAllowAndDeny(t *testing.T) {
	state := GateState{Resolution: Resolution{
		RoleName:    "Analista",
		Permissions: []string{"VerMuestras", "EditarMuestra"},
	}}
	assert.Equal(t, Allow, Check("VerMuestras", state))
	assert.Equal(t, Deny, Check("EliminarMuestra", state))
}

func TestCheckDenyOnEmptyResolution(t *testing.T) {
	state := GateState{Resolution: Resolution{RoleName: RoleNameUnassigned, Permissions: []string{}}}
	assert.Equal(t, Deny, Check("VerMuestras", state))
}

func TestDecisionString(t *testing.T) {
	assert.Equal(t, "pending", Pending.String())
	assert.Equal(t, "allow", Allow.String())
	assert.Equal(t, "deny", Deny.String())
}

func TestPageGuardFiresOnce(t *testing.T) {
	var fired atomic.Int32
	guard := NewPageGuardWithDelay(10*time.Millisecond, func() {
		fired.Add(1)
	})

	guard.Deny()
	guard.Deny()
	guard.Deny()

	assert.Eventually(t, func() bool {
		return fired.Load() == 1
	}, time.Second, 5*time.Millisecond)

	// A later re-render must not reschedule.
	guard.Deny()
	time.Sleep(30 * time.Millisecond)
	assert.EqualValues(t, 1, fired.Load())
}

func TestPageGuardStopCancelsRedirect(t *testing.T) {
	var fired atomic.Int32
	guard := NewPageGuardWithDelay(20*time.Millisecond, func() {
		fired.Add(1)
	})

	guard.Deny()
	guard.Stop()

	time.Sleep(60 * time.Millisecond)
	assert.EqualValues(t, 0, fired.Load())
}

func TestPageGuardStopBeforeDeny(t *testing.T) {
	var fired atomic.Int32
	guard := NewPageGuardWithDelay(time.Millisecond, func() {
		fired.Add(1)
	})

	guard.Stop()
	guard.Deny()

	time.Sleep(20 * time.Millisecond)
	assert.EqualValues(t, 0, fired.Load())
}
