package openregister

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/albertocavalcante/go-openregister/registry"
)

// registerRegister is the register listing every register on a phase.
const registerRegister = "register"

// RegistersWithField returns every register on phase that declares
// fieldName, in register index order. Dead registers are skipped.
func (c *Catalog) RegistersWithField(ctx context.Context, fieldName, phase string) ([]*Register, error) {
	index, err := c.client.GetRegisterIndex(ctx, phase)
	if err != nil {
		return nil, err
	}

	var registers []*Register
	for _, name := range index.Keys {
		if c.cfg.deadRegisters[name] {
			c.log.Debug("skipping dead register", "phase", phase, "register", name)
			continue
		}
		meta := index.Values[name]
		if !meta.HasField(fieldName) {
			continue
		}

		r, err := c.Register(ctx, phase, name)
		if err != nil {
			return nil, err
		}
		registers = append(registers, r)
	}
	return registers, nil
}

// CheckRegistersExist materializes every register named by the phase's
// register register. Registers that cannot be reached, including names that
// cannot form a hostname, are reported to w as "BROKEN: name" and returned;
// any other failure stops the check.
func (c *Catalog) CheckRegistersExist(ctx context.Context, phase string, w io.Writer) ([]string, error) {
	master, err := c.Register(ctx, phase, registerRegister)
	if err != nil {
		return nil, err
	}
	records, err := master.Records(ctx)
	if err != nil {
		return nil, err
	}

	var broken []string
	for _, name := range records.IDs() {
		err := c.checkRegister(ctx, phase, name)
		if err == nil {
			continue
		}
		if !IsConnectionError(err) && !errors.Is(err, registry.ErrInvalidName) {
			return broken, err
		}

		c.log.Warn("register unreachable", "phase", phase, "register", name, "error", err)
		if _, werr := fmt.Fprintf(w, "BROKEN: %s\n", name); werr != nil {
			return broken, werr
		}
		broken = append(broken, name)
	}
	return broken, nil
}

func (c *Catalog) checkRegister(ctx context.Context, phase, name string) error {
	r, err := c.Register(ctx, phase, name)
	if err != nil {
		return err
	}
	_, err = r.Records(ctx)
	return err
}
