package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/oarkflow/secured"
	"github.com/oarkflow/secured/logger"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "convert":
		handleConvert()
	case "validate":
		handleValidate()
	case "stats":
		handleStats()
	case "check":
		handleCheck()
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("secured-config - Metadata configuration tool for secured")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  secured-config convert <input> <output>                        - Convert between formats")
	fmt.Println("  secured-config validate <file>                                 - Validate configuration")
	fmt.Println("  secured-config stats <file>                                    - Show configuration statistics")
	fmt.Println("  secured-config check <file> <principal> <type.method> [rtype]  - Evaluate one decision")
	fmt.Println()
	fmt.Println("Supported formats: .yaml, .yml, .json")
}

func handleConvert() {
	if len(os.Args) < 4 {
		fmt.Println("Usage: secured-config convert <input> <output>")
		os.Exit(1)
	}
	cfg, err := loadConfig(os.Args[2])
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}
	var data []byte
	switch strings.ToLower(filepath.Ext(os.Args[3])) {
	case ".yaml", ".yml":
		data, err = cfg.ToYAML()
	case ".json":
		data, err = cfg.ToJSON()
	default:
		fmt.Printf("Unsupported output format: %s\n", os.Args[3])
		os.Exit(1)
	}
	if err != nil {
		fmt.Printf("Error encoding config: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(os.Args[3], data, 0o644); err != nil {
		fmt.Printf("Error writing output: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Converted %s -> %s\n", os.Args[2], os.Args[3])
}

func handleValidate() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: secured-config validate <file>")
		os.Exit(1)
	}
	cfg, err := loadConfig(os.Args[2])
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Printf("Invalid configuration: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Configuration is valid")
}

func handleStats() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: secured-config stats <file>")
		os.Exit(1)
	}
	cfg, err := loadConfig(os.Args[2])
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}
	securedTypes, securedMethods := 0, 0
	for _, t := range cfg.Types {
		if t.Secured != nil {
			securedTypes++
		}
	}
	for _, m := range cfg.Methods {
		if m.Secured != nil {
			securedMethods++
		}
	}
	fmt.Printf("Types:      %d (%d secured)\n", len(cfg.Types), securedTypes)
	fmt.Printf("Methods:    %d (%d secured)\n", len(cfg.Methods), securedMethods)
	fmt.Printf("Identities: %d\n", len(cfg.Identities))
}

func handleCheck() {
	if len(os.Args) < 5 {
		fmt.Println("Usage: secured-config check <file> <principal> <type.method> [runtime-type]")
		os.Exit(1)
	}
	cfg, err := loadConfig(os.Args[2])
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}
	principal := os.Args[3]
	typeName, methodName, ok := strings.Cut(os.Args[4], ".")
	if !ok {
		fmt.Println("Method must be given as type.method")
		os.Exit(1)
	}
	runtimeType := ""
	if len(os.Args) > 5 {
		runtimeType = os.Args[5]
	}

	mgr, err := secured.NewManager(cfg.BuildRegistry(), secured.WithLogger(logger.NewPhusluLogger()))
	if err != nil {
		fmt.Printf("Error building manager: %v\n", err)
		os.Exit(1)
	}
	call := secured.MethodCall{
		Target: secured.MethodRef{Type: typeName, Name: methodName},
		On:     runtimeType,
	}
	dec, err := mgr.Check(cfg.SupplierFor(principal), call)
	if err != nil {
		fmt.Printf("Check failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Decision: %s\n", dec)
}

func loadConfig(path string) (*secured.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	loader := secured.NewConfigLoader()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return loader.LoadYAML(data)
	case ".json":
		return loader.LoadJSON(data)
	default:
		return nil, fmt.Errorf("unsupported config format: %s", path)
	}
}
