package midi

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"gridloop/config"
	"gridloop/schedule"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // register the MIDI driver
)

// DeviceManager owns the grid controller connection and the clock input
// subscription, reconnecting either on request rather than polling.
// Grounded on the teacher's midi/manager.go DeviceManager.
type DeviceManager struct {
	mu         sync.RWMutex
	controller Controller
	clockStop  func()
	timeout    time.Duration
}

// NewDeviceManager creates an empty DeviceManager.
func NewDeviceManager() *DeviceManager {
	return &DeviceManager{timeout: 5 * time.Second}
}

// GetController returns the currently connected grid controller, or nil.
func (dm *DeviceManager) GetController() Controller {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	return dm.controller
}

// Connect finds and opens the configured grid controller (with a timeout,
// since CoreMIDI enumeration can hang when the system MIDI server is
// wedged — same guard as the teacher's Connect).
func (dm *DeviceManager) Connect(cfg *config.Config, remote *schedule.RemoteState) error {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	if dm.controller != nil {
		dm.controller.Close()
		dm.controller = nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), dm.timeout)
	defer cancel()

	resultCh := make(chan error, 1)
	var newController Controller

	go func() {
		ctrl, err := dm.tryConnect(cfg, remote)
		if err == nil {
			newController = ctrl
		}
		resultCh <- err
	}()

	select {
	case err := <-resultCh:
		if err == nil {
			dm.controller = newController
		}
		return err
	case <-ctx.Done():
		return fmt.Errorf("MIDI timeout - system may be busy")
	}
}

func (dm *DeviceManager) tryConnect(cfg *config.Config, remote *schedule.RemoteState) (Controller, error) {
	inPorts := gomidi.GetInPorts()
	outPorts := gomidi.GetOutPorts()

	if len(inPorts) == 0 {
		return nil, fmt.Errorf("no MIDI input ports found")
	}

	if inPort := findPortByName(inPorts, cfg.Controller.PortName); inPort != nil {
		outName := strings.Replace(cfg.Controller.PortName, "In", "Out", 1)
		outPort := findPortByName(outPorts, outName)
		return NewGridController(inPort.String(), inPort, outPort, remote)
	}

	for _, inPort := range inPorts {
		name := strings.ToLower(inPort.String())
		if strings.Contains(name, "launchpad") {
			outPort := findPortByName(outPorts, inPort.String())
			return NewGridController(inPort.String(), inPort, outPort, remote)
		}
	}

	return nil, fmt.Errorf("no compatible grid controller found")
}

// ConnectClockInput subscribes remote to 24 PPQ clock/start messages from
// cfg's configured clock port, separate from the grid controller's own
// input in case the clock comes from a different device (a drum machine
// or standalone clock generator, per spec.md's external-clock model).
// An empty PortName is a no-op: the scheduler then freewheels.
func (dm *DeviceManager) ConnectClockInput(cfg *config.Config, remote *schedule.RemoteState) error {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	if dm.clockStop != nil {
		dm.clockStop()
		dm.clockStop = nil
	}

	if cfg.Clock.PortName == "" {
		return nil
	}

	inPorts := gomidi.GetInPorts()
	inPort := findPortByName(inPorts, cfg.Clock.PortName)
	if inPort == nil {
		return fmt.Errorf("MIDI clock port not found: %s", cfg.Clock.PortName)
	}

	stop, err := gomidi.ListenTo(inPort, func(msg gomidi.Message, stampMicros int32) {
		raw := msg.Bytes()
		if len(raw) == 0 {
			return
		}
		switch raw[0] {
		case statusClockTick:
			remote.OnTick(uint64(stampMicros))
		case statusStart:
			remote.OnStart(uint64(stampMicros))
		}
	})
	if err != nil {
		return err
	}
	dm.clockStop = stop
	return nil
}

// Disconnect closes the current controller and clock subscription.
func (dm *DeviceManager) Disconnect() {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	if dm.controller != nil {
		dm.controller.Close()
		dm.controller = nil
	}
	if dm.clockStop != nil {
		dm.clockStop()
		dm.clockStop = nil
	}
}

// ScanPorts lists the available MIDI port names (with the same timeout
// guard as Connect).
func (dm *DeviceManager) ScanPorts() (ins, outs []string, err error) {
	ctx, cancel := context.WithTimeout(context.Background(), dm.timeout)
	defer cancel()

	type result struct{ ins, outs []string }
	ch := make(chan result, 1)
	go func() {
		var r result
		for _, p := range gomidi.GetInPorts() {
			r.ins = append(r.ins, p.String())
		}
		for _, p := range gomidi.GetOutPorts() {
			r.outs = append(r.outs, p.String())
		}
		ch <- r
	}()

	select {
	case r := <-ch:
		return r.ins, r.outs, nil
	case <-ctx.Done():
		return nil, nil, fmt.Errorf("MIDI scan timeout")
	}
}

func findPortByName[T interface{ String() string }](ports []T, name string) T {
	nameLower := strings.ToLower(name)
	for _, p := range ports {
		if strings.Contains(strings.ToLower(p.String()), nameLower) {
			return p
		}
	}
	var zero T
	return zero
}
