/*
 * arm - Main process.
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
	"errors"
	"log/slog"
	"os"

	getopt "github.com/pborman/getopt/v2"
	"github.com/rcornwell/arm/command/reader"
	config "github.com/rcornwell/arm/config/configparser"
	"github.com/rcornwell/arm/config/sysconfig"
	"github.com/rcornwell/arm/internal/cpu"
	"github.com/rcornwell/arm/internal/hostbus"
	logger "github.com/rcornwell/arm/util/logger"

	_ "github.com/rcornwell/arm/config/debugconfig"
)

var Logger *slog.Logger

func main() {
	optConfig := getopt.StringLong("config", 'c', "", "Construction file")
	optModel := getopt.StringLong("model", 'm', "", "CPU model, overrides MODEL directive")
	optLogFile := getopt.StringLong("log", 'l', "", "Log file")
	optHelp := getopt.BoolLong("help", 'h', "Help")
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
	Logger = slog.New(logger.NewHandler(file, &slog.HandlerOptions{Level: programLevel, AddSource: false}, false))
	slog.SetDefault(Logger)

	Logger.Info("arm started")

	if *optConfig != "" {
		if err := config.LoadConfigFile(*optConfig); err != nil {
			Logger.Error(err.Error())
			os.Exit(1)
		}
	}

	modelName := sysconfig.Model()
	if *optModel != "" {
		modelName = *optModel
	}

	variant, err := cpu.LookupVariant(modelName)
	if err != nil {
		Logger.Error(err.Error())
		os.Exit(1)
	}

	endian := hostbus.LittleEndian
	if variant.BigEndian {
		endian = hostbus.BigEndian
	}
	ram := hostbus.NewRAM(sysconfig.MemorySize(), endian)

	for _, img := range sysconfig.Images() {
		if err := loadImage(ram, img); err != nil {
			Logger.Error(err.Error())
			os.Exit(1)
		}
	}

	core := cpu.NewCPU(variant, ram)
	core.Reset()

	Logger.Info("core ready", "model", variant.Name, "memory", sysconfig.MemorySize())

	reader.ConsoleReader(core)

	Logger.Info("arm stopped")
}

// loadImage copies a binary image from disk into ram at its
// configured base address.
func loadImage(ram *hostbus.RAM, img sysconfig.Image) error {
	data, err := os.ReadFile(img.Path)
	if err != nil {
		return err
	}
	dest := ram.Bytes()
	if int(img.Base)+len(data) > len(dest) {
		return errors.New("image " + img.Path + " does not fit in configured memory")
	}
	copy(dest[img.Base:], data)
	return nil
}
