package main

import (
	"encoding/xml"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"omibyte.io/svd2zig/generator"
	"omibyte.io/svd2zig/generator/zig"
	"omibyte.io/svd2zig/loader"
	"omibyte.io/svd2zig/svd"
	"omibyte.io/svd2zig/targets"
)

var (
	generateOpts = struct {
		input     string
		outputDir string
	}{}

	generateCmd = &cobra.Command{
		Use:   "generate",
		Short: "Generate Zig register definitions",
		Long:  "Generate a Zig source file exposing every peripheral register of the described device as a packed struct bound to its absolute address",
		Run: func(cmd *cobra.Command, args []string) {
			fnames, err := filepath.Glob(generateOpts.input)
			if err != nil {
				log.Fatal(err)
			}
			if len(fnames) == 0 {
				log.Fatalf("no input files match %s", generateOpts.input)
			}

			// Create the output directory
			if err = os.MkdirAll(generateOpts.outputDir, 0750); err != nil {
				log.Fatal("file io error: ", err)
			}

			for _, fname := range fnames {
				generate(fname)
			}

			fmt.Println("Done.")
		},
	}
)

func init() {
	generateCmd.Flags().StringVarP(&generateOpts.input, "in", "i", "", "input SVD file (glob accepted)")
	generateCmd.Flags().StringVarP(&generateOpts.outputDir, "out", "o", ".", "output directory")
	generateCmd.MarkFlagRequired("in")
}

func generate(fname string) {
	// Open the input file
	file, err := os.Open(fname)
	if err != nil {
		log.Fatal("file io error: ", err)
	}

	// Read the SVD file into a buffer
	buf, err := io.ReadAll(file)
	if err != nil {
		log.Fatal("io error: ", err)
	}

	// Close the file
	if err = file.Close(); err != nil {
		log.Fatal("file io error: ", err)
	}

	// Decode the SVD XML
	var doc svd.DeviceElement
	if err = xml.Unmarshal(buf, &doc); err != nil {
		log.Fatal("xml decode error: ", err)
	}

	// Build the device model
	dev, err := loader.Load(&doc)
	if err != nil {
		log.Fatalf("%s: %v", fname, err)
	}

	fmt.Println("Generating register definitions for the following machine:")
	fmt.Printf("Device:\t\t%s\n", dev.Name)
	if dev.CPU != nil {
		fmt.Printf("CPU:\t\t%s\n", dev.CPU.Name)
		fmt.Printf("Revision:\t%s\n", dev.CPU.Revision)
		fmt.Printf("Endian:\t\t%s\n", dev.CPU.Endian)

		if _, err := targets.All().FindByChip(dev.Name); err != nil {
			fmt.Printf("Note: %s is not a validated target; generated output has not been tested on it\n", dev.Name)
		}
	}

	var gen generator.Generator = zig.NewGenerator(dev)

	// Write the generated source next to the other outputs, named after
	// the device.
	outName := filepath.Join(generateOpts.outputDir, strings.ToLower(dev.Name)+".zig")
	f, err := os.Create(outName)
	if err != nil {
		log.Fatal("file io error: ", err)
	}
	if err = gen.Generate(f); err != nil {
		f.Close()
		log.Fatal("generator error: ", err)
	}
	if err = f.Close(); err != nil {
		log.Fatal("file io error: ", err)
	}
}
