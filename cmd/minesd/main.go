package main

//go-build: CGO_ENABLED=0

import (
	"context"
	"flag"
	"io"
	"log"
	"net"
	"net/http"

	"github.com/golang/glog"

	"github.com/robotalks/minefield/pkg/device"
	fx "github.com/robotalks/minefield/pkg/framework"
	"github.com/robotalks/minefield/pkg/transport"
)

func init() {
	device.SetupFlags()
}

func main() {
	flag.Parse()
	defer glog.Flush()

	conf := device.NewConfig()
	dev := conf.MustNewDevice()
	if dev.Events != nil {
		defer dev.Events.Close()
	}
	glog.Infof("device %s, %s tiers", dev.DeviceID, conf.Tiers)

	runner := fx.NewRunner().HandleSignals()
	if conf.Listen != "" {
		runner.Go(fx.NamedRun("listener", fx.RunFunc(func(ctx context.Context) error {
			return listen(ctx, conf.Listen, dev)
		})))
	} else {
		port := transport.MustOpen(conf.Port)
		runner.Go(fx.NamedRun("device", fx.RunFunc(func(ctx context.Context) error {
			return dev.Serve(ctx, port)
		})))
	}
	err := runner.Wait()
	glog.Infof("stats: %+v", dev.Stats())
	if err != nil {
		log.Fatalln(err)
	}
}

func listen(ctx context.Context, addr string, dev *device.Device) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	glog.Infof("listening on %s", ln.Addr())
	server := &http.Server{Handler: transport.WebsocketHandler(func(rw io.ReadWriteCloser) error {
		return dev.Serve(ctx, rw)
	})}
	err = fx.RunWithContextCloser(ctx, server, func() error {
		return server.Serve(ln)
	})
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}
