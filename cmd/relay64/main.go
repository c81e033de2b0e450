// Package main provides the entry point for relay64, a sequential
// 64-bit von Neumann CPU simulator.
package main

import (
	"flag"
	"fmt"
	"os"

	"relay64/clock"
	"relay64/cpu"
	"relay64/ipc"
	"relay64/loader"
	"relay64/mem"
)

var (
	cycles     = flag.Uint64("cycles", 0, "Stop after this many cycles even without a halt (0 means unbounded)")
	enableIPC  = flag.Bool("ipc", false, "Poll stdin for INC_CLK/DEC_CLK/SET_CLK/GET control messages")
	configPath = flag.String("config", "", "Path to clock configuration JSON file")
	cachePath  = flag.String("cache-config", "", "Path to cache geometry JSON file")
	verbose    = flag.Bool("v", false, "Verbose output")
)

func main() {
	flag.Parse()

	if flag.NArg() < 2 {
		fmt.Fprintf(os.Stderr, "Usage: relay64 [options] <data-image> <instr-image>\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	dataImagePath := flag.Arg(0)
	instrImagePath := flag.Arg(1)

	fmt.Println("----- START -----")

	memory := mem.NewMemory()
	if err := loader.LoadDataImage(dataImagePath, memory); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading data image: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("----- DATA LOAD COMPLETE -----")

	if err := loader.LoadInstructionImage(instrImagePath, memory); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading instruction image: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("----- INSTRUCTION LOAD COMPLETE -----")

	cacheCfg := mem.DefaultCacheConfig()
	if *cachePath != "" {
		loaded, err := mem.LoadCacheConfig(*cachePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading cache config: %v\n", err)
			os.Exit(1)
		}
		cacheCfg = loaded
	}

	bus := mem.NewBus()
	dam := mem.NewDataAccessManagerWithConfig(memory, bus, cacheCfg)
	ctrl := cpu.NewControlUnit(dam)
	ctrl.Out = os.Stdout

	cfg := clock.DefaultConfig()
	if *configPath != "" {
		loaded, err := clock.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading clock config: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *cycles != 0 {
		cfg.MaxCycles = *cycles
	}
	cfg.EnableIPC = cfg.EnableIPC || *enableIPC

	clk := clock.NewClock(ctrl, memory, bus, cfg)
	clk.Out = os.Stdout
	if cfg.EnableIPC {
		clk.Channel = ipc.NewPipeChannel(os.Stdin, os.Stdout)
	}

	if *verbose {
		fmt.Fprintf(os.Stderr, "data image: %s\n", dataImagePath)
		fmt.Fprintf(os.Stderr, "instruction image: %s\n", instrImagePath)
		fmt.Fprintf(os.Stderr, "clock speed: %d Hz\n", cfg.ClockSpeed)
	}

	clk.Run()

	fmt.Println("----- END -----")
}
