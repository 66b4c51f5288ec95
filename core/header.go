package core

import (
	"fmt"
	"path/filepath"

	"github.com/huangsam/queuewait/internal/contract"
)

// logDataHeader prints which data and models a command is about to use.
func logDataHeader(cfg *contract.Config) {
	dataName := filepath.Base(cfg.DataDir)
	if dataName == "" || dataName == "." {
		dataName = "current"
	}
	fmt.Printf("🔎 Data: %s (%d workers)\n", dataName, cfg.Workers)

	if len(cfg.ModelPaths) == 0 {
		fmt.Println("🧠 Models: baseline only")
		return
	}
	names := make([]string, len(cfg.ModelPaths))
	for i, p := range cfg.ModelPaths {
		names[i] = filepath.Base(p)
	}
	fmt.Printf("🧠 Models: baseline + %v\n", names)
}
