package machine

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/ccattuto/rv32ima/emu/cpu"
	"github.com/ccattuto/rv32ima/emu/memory"
)

func newHookTestCPU(ramSize uint32) (*cpu.CPU, *memory.Memory) {
	mem := memory.New(0, ramSize)
	return cpu.New(mem), mem
}

func TestDebugHookLogsIntegerArgument(t *testing.T) {
	c, _ := newHookTestCPU(256)
	var out bytes.Buffer
	log := slog.New(slog.NewTextHandler(&out, nil))
	hook := NewDebugHook(log)

	c.X[10] = 0xFFFFFFD6 // -42 in two's complement
	hook(c, 0xFFFF0000+debugActionLogInt)

	if !strings.Contains(out.String(), "-42") {
		t.Errorf("log output = %q, want it to contain -42", out.String())
	}
}

func TestDebugHookLogsStringArgument(t *testing.T) {
	c, mem := newHookTestCPU(256)
	var out bytes.Buffer
	log := slog.New(slog.NewTextHandler(&out, nil))
	hook := NewDebugHook(log)

	if err := mem.StoreBinary(0x10, append([]byte("hi there"), 0)); err != nil {
		t.Fatal(err)
	}
	c.X[10] = 0x10
	hook(c, 0xFFFF0000+debugActionLogString)

	if !strings.Contains(out.String(), "hi there") {
		t.Errorf("log output = %q, want it to contain the guest string", out.String())
	}
}

func TestDebugHookUnknownActionWarnsWithoutPanicking(t *testing.T) {
	c, _ := newHookTestCPU(256)
	var out bytes.Buffer
	log := slog.New(slog.NewTextHandler(&out, nil))
	hook := NewDebugHook(log)

	hook(c, 0xFFFF00FF)

	if !strings.Contains(out.String(), "unknown debug hook") {
		t.Errorf("log output = %q, want an unknown-action warning", out.String())
	}
}
