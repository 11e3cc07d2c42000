package device

import (
	"errors"
	"fmt"
	"slices"

	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/glapi"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/resource"
)

func (d *device) LoseContext() {
	if d.lost {
		return
	}
	d.lost = true
	d.logger().Info("context lost", "descriptors", d.registry.pool.live())
	for _, fn := range slices.Clone(d.lostListeners) {
		fn()
	}
}

func (d *device) RestoreContext(f glapi.Functions) error {
	if f == nil {
		return fmt.Errorf("%w: nil GL functions", ErrInvalidConfiguration)
	}
	if f.IsContextLost() {
		return errors.New("replacement context is already lost")
	}
	if !d.lost {
		d.LoseContext()
	}

	snapshot := d.applied.clone()
	resources := slices.Clone(d.registry.order)
	for _, res := range resources {
		if pd := d.registry.lookup(res); pd != nil && pd.variables != nil {
			d.deferValues(res.ID(), pd.variables.pendingValues())
		}
	}

	d.registry.dropAll()
	if err := d.bind(f); err != nil {
		return err
	}
	d.lost = false
	d.initState()

	var errs []error
	skipped := 0
	for _, res := range resources {
		if res.Released() {
			continue
		}
		_, err := d.registry.ensure(res)
		switch {
		case errors.Is(err, errContextLost):
			d.LoseContext()
			return nil
		case err != nil && (res.Kind() == resource.KindShader || res.Kind() == resource.KindProgram):
			d.logger().Warn("resource skipped on restore", "kind", res.Kind().String(), "name", res.Name(), "err", err)
			skipped++
			continue
		case err != nil:
			d.logger().Warn("resource skipped on restore", "kind", res.Kind().String(), "name", res.Name(), "err", err)
			errs = append(errs, err)
			skipped++
			continue
		}
	}

	pending := d.pending
	d.pending = snapshot
	err := d.apply()
	d.pending = pending
	if errors.Is(err, errContextLost) || d.f.IsContextLost() {
		d.LoseContext()
		return nil
	}
	switch {
	case errors.Is(err, ErrCompilationFailure) || errors.Is(err, ErrLinkFailure):
		d.logger().Warn("applied program not restored", "err", err)
	case err != nil:
		errs = append(errs, err)
	}
	d.applyErr = err
	d.cache.setClearColor(snapshot.clearColor)
	d.cache.setClearDepth(snapshot.clearDepth)
	d.f.Clear(glapi.COLOR_BUFFER_BIT | glapi.DEPTH_BUFFER_BIT)
	d.stats.CallsIssued++

	d.logger().Info("context restored", "descriptors", d.registry.pool.live(), "skipped", skipped)
	for _, fn := range slices.Clone(d.restoredListeners) {
		fn()
	}
	return errors.Join(errs...)
}
