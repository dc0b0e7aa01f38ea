package zcl

import (
	"errors"
	"log/slog"
	"os"
	"testing"
)

func newTestRegistry() *Registry {
	r := NewRegistry(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	r.Register(ClusterDef{
		ID:   0x0006,
		Name: "On/Off",
		Attributes: []AttributeDef{
			{ID: 0, Name: "OnOff", Type: TypeBool, Access: AccessRead | AccessReport},
		},
		Commands: []CommandDef{
			{ID: 0x01, Name: "On", Direction: DirectionToServer},
		},
	})
	return r
}

func TestRegistryRegisterAndGet(t *testing.T) {
	r := newTestRegistry()

	got := r.Get(0x0006)
	if got == nil {
		t.Fatal("cluster not found")
	}
	if got.Name != "On/Off" {
		t.Errorf("name = %q, want %q", got.Name, "On/Off")
	}
	if r.Len() != 1 {
		t.Errorf("len = %d, want 1", r.Len())
	}
}

func TestRegistryResolveAttr(t *testing.T) {
	r := newTestRegistry()

	attr, err := r.ResolveAttr(0x0006, "onOff")
	if err != nil {
		t.Fatal(err)
	}
	if attr.ID != 0 || attr.Type != TypeBool {
		t.Errorf("attr = %+v", attr)
	}
	if !attr.IsReportable() {
		t.Error("OnOff should be reportable")
	}

	if _, err := r.ResolveAttr(0x0006, "Nope"); !errors.Is(err, ErrUnknownAttribute) {
		t.Errorf("err = %v, want ErrUnknownAttribute", err)
	}
	if _, err := r.ResolveAttr(0x0300, "CurrentX"); !errors.Is(err, ErrUnknownAttribute) {
		t.Errorf("err = %v, want ErrUnknownAttribute", err)
	}
}

func TestRegistryAttrName(t *testing.T) {
	r := newTestRegistry()
	if got := r.AttrName(0x0006, 0); got != "OnOff" {
		t.Errorf("name = %q, want OnOff", got)
	}
	if got := r.AttrName(0x0006, 0x4003); got != "0x4003" {
		t.Errorf("name = %q, want 0x4003", got)
	}
}

func TestFindCommandByName(t *testing.T) {
	r := newTestRegistry()
	cmd := r.Get(0x0006).FindCommandByName("on")
	if cmd == nil || cmd.ID != 0x01 {
		t.Fatalf("cmd = %+v", cmd)
	}
}

func TestFindCommand(t *testing.T) {
	c := newTestRegistry().Get(0x0006)
	if cmd := c.FindCommand(0x01); cmd == nil || cmd.Name != "On" {
		t.Fatalf("FindCommand(0x01) = %+v", cmd)
	}
	if cmd := c.FindCommand(0x42); cmd != nil {
		t.Errorf("FindCommand(0x42) = %+v, want nil", cmd)
	}
	if cmd := c.FindCommandByName("on"); cmd == nil || cmd.ID != 0x01 {
		t.Errorf("FindCommandByName(on) = %+v", cmd)
	}
}
