package main

import (
	"os"
	"path/filepath"
	"reflect"

	musgen "github.com/mus-format/musgen-go/mus"
	genops "github.com/mus-format/musgen-go/options/generate"
	structops "github.com/mus-format/musgen-go/options/struct"
	typeops "github.com/mus-format/musgen-go/options/type"
	"github.com/poiesic/tekir/core"
)

const output = "records_mus.gen.go"

func main() {
	cwd, err := os.Getwd()
	if err != nil {
		panic(err)
	}
	// go generate runs in core/; a manual run from the root writes there too.
	dir := cwd
	if filepath.Base(cwd) != "core" {
		dir = filepath.Join(cwd, "core")
	}

	g, err := musgen.NewCodeGenerator(
		genops.WithPkgPath("github.com/poiesic/tekir/core"),
	)
	if err != nil {
		panic(err)
	}

	g.AddDefinedType(reflect.TypeFor[core.ID]())
	g.AddDefinedType(reflect.TypeFor[core.Role]())

	must(g.AddStruct(reflect.TypeFor[core.ModelOption](),
		structops.WithField(),
		structops.WithField(),
		structops.WithField(),
		structops.WithField()))

	must(g.AddStruct(reflect.TypeFor[core.Message](),
		structops.WithField(),
		structops.WithField()))

	// CreatedAt is stored as a Unix micro timestamp.
	must(g.AddStruct(reflect.TypeFor[core.ChatSession](),
		structops.WithField(),
		structops.WithField(),
		structops.WithField(),
		structops.WithField(typeops.WithTimeUnit(typeops.Micro)),
		structops.WithField(),
		structops.WithField()))

	must(g.AddStruct(reflect.TypeFor[core.CacheEntry](),
		structops.WithField(),
		structops.WithField()))

	bs, err := g.Generate()
	if err != nil {
		panic(err)
	}
	if err := os.WriteFile(filepath.Join(dir, output), bs, 0644); err != nil {
		panic(err)
	}
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
