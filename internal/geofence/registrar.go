package geofence

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"
)

// LocalRegistrar is the in-process Registrar used when region monitoring is
// mirrored by the device itself: arming mints a handle the device echoes back
// in its crossing events. Deployments with a push relay swap in a Registrar
// that talks to it.
type LocalRegistrar struct {
	count atomic.Int64
}

func NewLocalRegistrar() *LocalRegistrar {
	return &LocalRegistrar{}
}

func (r *LocalRegistrar) Register(_ context.Context, _ string, _, _, _ float64) (RegionHandle, error) {
	r.count.Add(1)
	return RegionHandle(uuid.NewString()), nil
}

func (r *LocalRegistrar) Unregister(context.Context, RegionHandle) error {
	r.count.Add(-1)
	return nil
}

// Active returns how many regions are currently registered.
func (r *LocalRegistrar) Active() int64 {
	return r.count.Load()
}
