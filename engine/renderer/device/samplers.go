package device

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/glapi"
)

// resolveSamplers gives every sampler slot of the bound program a texture unit holding its
// texture. Units are claimed for the duration of one pass so two slots never share one; a slot
// whose unit differs from the last pass marks its uniform dirty.
func (d *device) resolveSamplers(pv *programVariables) error {
	if len(pv.samplers) == 0 {
		return nil
	}
	// Create every sampled texture before claiming units; creation must not move a claimed binding.
	for _, s := range pv.samplers {
		for _, r := range s.textures {
			if tex := samplerTexture(r); tex != nil {
				if _, err := d.registry.ensure(tex); err != nil {
					return err
				}
			}
		}
	}
	defer clear(d.claimed)

	for _, s := range pv.samplers {
		changed := false
		for slot, r := range s.textures {
			tex := samplerTexture(r)
			if tex == nil {
				continue
			}
			td := d.registry.lookup(tex)
			unit := d.allocateUnit(td.target, td.texture)
			if unit < 0 {
				return fmt.Errorf("%w: no texture unit left for sampler %q", ErrUnsupportedCapability, s.path)
			}
			d.claimed[unit] = true
			d.cache.bindTextureUnit(unit, td.target, td.texture)
			if td.dirty() {
				d.cache.activeTexture(unit)
				if err := d.registry.updateTexture(td, tex); err != nil {
					return err
				}
			}
			if s.units[slot] != unit {
				s.units[slot] = unit
				changed = true
			}
		}
		s.current = s.pending
		if changed {
			units := make([]int32, len(s.units))
			for i, u := range s.units {
				units[i] = int32(max(u, 0))
			}
			s.data = uniformData{ints: units}
			pv.markDirty(s)
		}
	}
	return nil
}

// allocateUnit picks a unit for texture t: an unclaimed unit already holding it, else an unclaimed
// unit with nothing bound on target, else any unclaimed unit. The last case evicts whatever that
// unit held; with more samplers than units this can unbind a texture another draw relied on.
func (d *device) allocateUnit(target glapi.Enum, t glapi.Texture) int {
	for u, claimed := range d.claimed {
		if !claimed && d.cache.boundTexture(u, target) == t {
			return u
		}
	}
	for u, claimed := range d.claimed {
		if !claimed && d.cache.boundTexture(u, target) == 0 {
			return u
		}
	}
	for u, claimed := range d.claimed {
		if !claimed {
			return u
		}
	}
	return -1
}
