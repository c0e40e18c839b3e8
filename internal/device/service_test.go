package device

import (
	"context"
	"errors"
	"testing"

	"github.com/nerrad567/homeguard-gateway/internal/auth"
	"github.com/nerrad567/homeguard-gateway/internal/infrastructure/logging"
)

type fakeCameraRemote struct {
	cameras []RTSPCamera
	err     error
}

func (f *fakeCameraRemote) List(ctx context.Context) ([]RTSPCamera, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.cameras, nil
}

func (f *fakeCameraRemote) Create(ctx context.Context, c RTSPCamera) (RTSPCamera, error) {
	if f.err != nil {
		return RTSPCamera{}, f.err
	}
	c.ID = int64(len(f.cameras) + 1)
	return c, nil
}

func (f *fakeCameraRemote) Update(ctx context.Context, c RTSPCamera) (RTSPCamera, error) {
	return c, f.err
}

func (f *fakeCameraRemote) Delete(ctx context.Context, id int64) error { return f.err }

type fakeReedRemote struct {
	reeds      []MagneticReed
	state      ReedState
	err        error
	stateCalls int
}

func (f *fakeReedRemote) List(ctx context.Context) ([]MagneticReed, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.reeds, nil
}

func (f *fakeReedRemote) Create(ctx context.Context, r MagneticReed) (MagneticReed, error) {
	if f.err != nil {
		return MagneticReed{}, f.err
	}
	r.ID = int64(len(f.reeds) + 1)
	return r, nil
}

func (f *fakeReedRemote) Update(ctx context.Context, r MagneticReed) (MagneticReed, error) {
	return r, f.err
}

func (f *fakeReedRemote) Delete(ctx context.Context, id int64) error { return f.err }

func (f *fakeReedRemote) State(ctx context.Context, gpioPin int) (ReedState, error) {
	f.stateCalls++
	if f.err != nil {
		return ReedState{}, f.err
	}
	return f.state, nil
}

type allowGate struct{}

func (allowGate) Require(auth.Permission) error { return nil }

type denyGate struct{}

func (denyGate) Require(perm auth.Permission) error { return auth.ErrPermissionDenied }

func TestService_RefreshLoadsBothInventories(t *testing.T) {
	cameras := &fakeCameraRemote{cameras: []RTSPCamera{{ID: 1, Name: "porch", IP: "192.168.1.20"}}}
	reeds := &fakeReedRemote{reeds: []MagneticReed{{ID: 1, Name: "front door", GPIOPin: 17}}}
	s := NewService(cameras, reeds, allowGate{}, logging.Default())

	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	inv := s.Inventory()
	if len(inv.Cameras) != 1 || len(inv.Reeds) != 1 {
		t.Errorf("Inventory() = %d cameras, %d reeds, want 1/1", len(inv.Cameras), len(inv.Reeds))
	}
}

func TestService_RefreshPartialFailure(t *testing.T) {
	cameras := &fakeCameraRemote{cameras: []RTSPCamera{{ID: 1}}}
	reeds := &fakeReedRemote{err: errors.New("boom")}
	s := NewService(cameras, reeds, allowGate{}, logging.Default())

	if err := s.Refresh(context.Background()); err == nil {
		t.Fatal("Refresh() expected error when one inventory fails")
	}
}

func TestService_CameraByIP(t *testing.T) {
	cameras := &fakeCameraRemote{cameras: []RTSPCamera{
		{ID: 1, Name: "porch", IP: "192.168.1.20"},
		{ID: 2, Name: "garage", IP: "192.168.1.21"},
	}}
	s := NewService(cameras, &fakeReedRemote{}, allowGate{}, logging.Default())
	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	camera, ok := s.CameraByIP("192.168.1.21")
	if !ok || camera.Name != "garage" {
		t.Errorf("CameraByIP() = %+v, %v", camera, ok)
	}
	if _, ok := s.CameraByIP("10.0.0.1"); ok {
		t.Error("CameraByIP() matched unknown address")
	}
}

func TestService_MutationsGated(t *testing.T) {
	s := NewService(&fakeCameraRemote{}, &fakeReedRemote{}, denyGate{}, logging.Default())

	if _, err := s.CreateCamera(context.Background(), RTSPCamera{Name: "x"}); !errors.Is(err, auth.ErrPermissionDenied) {
		t.Errorf("CreateCamera() error = %v, want ErrPermissionDenied", err)
	}
	if _, err := s.CreateReed(context.Background(), MagneticReed{Name: "x"}); !errors.Is(err, auth.ErrPermissionDenied) {
		t.Errorf("CreateReed() error = %v, want ErrPermissionDenied", err)
	}
}

func TestService_ReedStatusRecordsOverlay(t *testing.T) {
	reeds := &fakeReedRemote{state: ReedState{GPIOPin: 17, Open: true}}
	s := NewService(&fakeCameraRemote{}, reeds, allowGate{}, logging.Default())

	state, err := s.ReedStatus(context.Background(), 17)
	if err != nil {
		t.Fatalf("ReedStatus() error = %v", err)
	}
	if !state.Open {
		t.Error("ReedStatus() = closed, want open")
	}
	if states := s.ReedStates(); !states[17] {
		t.Error("overlay missing probed state")
	}
}

func TestService_ApplyReedStateNotifiesOnChange(t *testing.T) {
	s := NewService(&fakeCameraRemote{}, &fakeReedRemote{}, allowGate{}, logging.Default())

	var seen []ReedState
	s.OnReedChange(func(st ReedState) { seen = append(seen, st) })

	s.ApplyReedState(ReedState{GPIOPin: 17, Open: true})
	s.ApplyReedState(ReedState{GPIOPin: 17, Open: true}) // unchanged, no notify
	s.ApplyReedState(ReedState{GPIOPin: 17, Open: false})

	if len(seen) != 2 {
		t.Errorf("observer fired %d times, want 2", len(seen))
	}
}

func TestService_DeleteReedDropsOverlay(t *testing.T) {
	reeds := &fakeReedRemote{reeds: []MagneticReed{{ID: 1, GPIOPin: 17}}}
	s := NewService(&fakeCameraRemote{}, reeds, allowGate{}, logging.Default())
	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	s.ApplyReedState(ReedState{GPIOPin: 17, Open: true})
	if err := s.DeleteReed(context.Background(), 1); err != nil {
		t.Fatalf("DeleteReed() error = %v", err)
	}
	if _, ok := s.ReedStates()[17]; ok {
		t.Error("deleted sensor left a live reading behind")
	}
}
