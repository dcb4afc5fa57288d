package main

//go-build: CGO_ENABLED=0

import (
	"context"
	"flag"
	"log"

	fx "github.com/physlab/physview.go/pkg/framework"
	"github.com/physlab/physview.go/pkg/cli/sh"
	"github.com/physlab/physview.go/pkg/control"
	"github.com/physlab/physview.go/pkg/scene"
	"github.com/physlab/physview.go/pkg/viewer"
	"github.com/physlab/physview.go/pkg/visualization/see"
)

func init() {
	viewer.SetupFlags()
	see.SetupFlags()
}

func main() {
	flag.Parse()

	bus := control.NewBus()
	v, err := viewer.NewConfig().NewViewer(bus)
	if err != nil {
		log.Fatalln(err)
	}
	syncer := scene.NewSync(v.Slot)
	v.SubscribeSceneChange(syncer)
	vis, stream, err := see.NewConfig().NewAdapter(syncer)
	if err != nil {
		log.Fatalln(err)
	}

	loop := fx.NewLoop().Add(v, v.Controls, syncer, vis)

	ctx, cancel := context.WithCancel(context.Background())
	runner := fx.NewRunnerWith(ctx).HandleSignals()
	runner.Go(loop)
	if stream != nil {
		runner.Go(fx.NamedRun("see-stream", stream))
	}

	sh.New(loop, bus).Run(flag.Args()...)
	cancel()

	if err := runner.Wait(); err != nil {
		log.Fatalln(err)
	}
}
