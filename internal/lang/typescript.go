package lang

import (
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

func init() {
	Languages["typescript"] = &Language{
		Name:             "typescript",
		Extensions:       []string{".ts"},
		DefaultExtension: ".ts",
		IndexFile:        "index.ts",
		CallKeywords:     jsCallKeywords,
		lang:             typescript.GetLanguage(),
		Extract:          extractJS,
	}
	Languages["tsx"] = &Language{
		Name:             "tsx",
		Extensions:       []string{".tsx"},
		DefaultExtension: ".tsx",
		IndexFile:        "index.tsx",
		CallKeywords:     jsCallKeywords,
		lang:             tsx.GetLanguage(),
		Extract:          extractJS,
	}
}
