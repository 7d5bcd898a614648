/*
 * rv32ima - Main process.
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

package main

import (
	"bytes"
	"errors"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"syscall"

	getopt "github.com/pborman/getopt/v2"

	config "github.com/ccattuto/rv32ima/config/configparser"
	"github.com/ccattuto/rv32ima/config/debugconfig"
	"github.com/ccattuto/rv32ima/emu/cpu"
	"github.com/ccattuto/rv32ima/emu/loader"
	"github.com/ccattuto/rv32ima/emu/machine"
	"github.com/ccattuto/rv32ima/emu/memory"
	"github.com/ccattuto/rv32ima/emu/peripherals"
	"github.com/ccattuto/rv32ima/emu/syscalls"
	"github.com/ccattuto/rv32ima/util/hex"
	logger "github.com/ccattuto/rv32ima/util/logger"
)

var Logger *slog.Logger

func main() {
	optConfig := getopt.StringLong("config", 'c', "", "Configuration file")
	optLogFile := getopt.StringLong("log", 'l', "", "Log file")
	optDisk := getopt.StringLong("disk", 'd', "", "Block device backing file")
	optTrace := getopt.StringLong("trace", 't', "", "Trace categories: step,trap,syscall,mmio")
	optNoRVC := getopt.BoolLong("no-rvc", 0, "Disable the C extension")
	optHostFS := getopt.BoolLong("hostfs", 0, "Allow guest filesystem syscalls to reach the host")
	optHelp := getopt.BoolLong("help", 'h', "Help")
	getopt.SetParameters("image")
	getopt.Parse()

	if *optHelp {
		getopt.Usage()
		os.Exit(0)
	}

	var file *os.File
	if *optLogFile != "" {
		file, _ = os.Create(*optLogFile)
	}
	programLevel := new(slog.LevelVar)
	programLevel.Set(slog.LevelInfo)
	debug := false
	Logger = slog.New(logger.NewHandler(file, &slog.HandlerOptions{Level: programLevel, AddSource: false}, &debug))
	slog.SetDefault(Logger)

	cats, err := debugconfig.Parse(*optTrace)
	if err != nil {
		Logger.Error(err.Error())
		os.Exit(1)
	}

	cfg := config.Defaults()
	if *optConfig != "" {
		if err := config.LoadFile(*optConfig, &cfg); err != nil {
			Logger.Error(err.Error())
			os.Exit(1)
		}
	}
	if *optNoRVC {
		cfg.RVCEnabled = false
	}
	if *optHostFS {
		cfg.HostFS = true
	}

	args := getopt.Args()
	if len(args) != 1 {
		Logger.Error("exactly one image path is required")
		getopt.Usage()
		os.Exit(1)
	}
	imagePath := args[0]

	mem := memory.New(cfg.RAMBase, cfg.RAMSize)
	initRAM(mem, cfg)

	c := cpu.New(mem)
	c.SetRVCEnabled(cfg.RVCEnabled)
	initRegs(c, cfg)

	m := machine.New(c, mem)
	m.Log = Logger
	m.TimerEnabled = cfg.TimerEnabled
	m.InvariantCheck = cfg.InvariantCheck
	m.Trace = cats.Enabled(debugconfig.Step)

	img, err := loader.Load(imagePath, mem, cfg.InvariantCheck)
	if err != nil {
		Logger.Error("loading image", "path", imagePath, "err", err)
		os.Exit(1)
	}
	c.PC = img.Entry
	c.NextPC = img.Entry
	if img.HasStackTop {
		m.StackTop = img.StackTop
	}
	if img.HasStackBottom {
		m.StackBottom = img.StackBottom
	}
	if img.HasHeapStart {
		m.HeapStart = img.HeapStart
	}
	if len(img.Text) != 0 {
		m.TextBase = img.TextBase
		m.TextSnap = img.Text
	}
	m.FuncSymbols = img.Funcs

	dispatcher := syscalls.NewDispatcher(img.HeapStart, m.StackBottom)
	dispatcher.HostFS = cfg.HostFS
	c.ECall = dispatcher.Handle
	c.Debug = machine.NewDebugHook(Logger)

	uart := peripherals.NewUART(cfg.UARTBase, os.Stdin, os.Stdout)
	uart.NotifyRX = c.AssertExternalInterrupt
	mem.RegisterPeripheral(uart)

	var blockMedia *os.File
	if *optDisk != "" {
		blockMedia, err = os.OpenFile(*optDisk, os.O_RDWR, 0)
		if err != nil {
			Logger.Error("opening disk image", "path", *optDisk, "err", err)
			os.Exit(1)
		}
		defer blockMedia.Close()
		mem.RegisterPeripheral(peripherals.NewBlockDevice(cfg.BlockDevBase, blockMedia, blockMedia, mem))
	} else {
		mem.RegisterPeripheral(peripherals.NewBlockDevice(cfg.BlockDevBase, bytes.NewReader(nil), nil, mem))
	}

	mtimer := peripherals.NewMachineTimer(c, cfg.MtimeBase, cfg.MtimecmpBase)
	mem.RegisterPeripheral(mtimer.MTimeView())
	mem.RegisterPeripheral(mtimer.MTimecmpView())

	Logger.Info("rv32ima started", "image", imagePath, "entry", img.Entry)

	runner := machine.NewRunner(m)
	runner.Start()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	done := make(chan struct{})
	go func() {
		runErr = runner.Wait()
		close(done)
	}()

	select {
	case <-sigChan:
		Logger.Info("got quit signal")
		runner.Stop()
		<-done
	case <-done:
	}

	reportOutcome(runErr, c)
}

func initRAM(mem *memory.Memory, cfg config.Config) {
	switch cfg.RAMInitMode {
	case "zero":
	case "random":
		buf := make([]byte, cfg.RAMSize)
		rand.Read(buf)
		_ = mem.StoreBinary(mem.Base(), buf)
	case "addr":
		buf := make([]byte, cfg.RAMSize)
		for i := range buf {
			buf[i] = byte(cfg.RAMBase + uint32(i))
		}
		_ = mem.StoreBinary(mem.Base(), buf)
	case "value":
		buf := make([]byte, cfg.RAMSize)
		for i := range buf {
			buf[i] = cfg.RAMInitValue
		}
		_ = mem.StoreBinary(mem.Base(), buf)
	}
}

func initRegs(c *cpu.CPU, cfg config.Config) {
	switch cfg.RegInitMode {
	case "zero", "":
	case "random":
		for i := 1; i < 32; i++ {
			c.X[i] = rand.Uint32()
		}
	case "value":
		for i := 1; i < 32; i++ {
			c.X[i] = cfg.RegInitValue
		}
	}
}

func reportOutcome(err error, c *cpu.CPU) {
	if err == nil {
		return
	}
	var term *machine.ExecutionTerminatedError
	if errors.As(err, &term) {
		if term.ExitCode != 0 {
			Logger.Error("execution terminated", "cause", term.Cause, "exit_code", term.ExitCode)
			os.Exit(1)
		}
		Logger.Info("execution terminated", "cause", term.Cause)
		return
	}
	var accessErr *memory.AccessError
	var invErr *machine.InvariantViolationError
	if !errors.As(err, &accessErr) && !errors.As(err, &invErr) {
		Logger.Error("unexpected error", "err", err)
		panic(err)
	}
	Logger.Error("execution stopped on error", "err", err, "pc", hex.Word(c.PC), "regs", "\n"+hex.Regs("", c.X))
	os.Exit(1)
}
