// Command sctpecho is a manual smoke-test for the sctp package: it wires a
// loop, a channel, and a trivial echo pipeline end to end over a real
// kernel SCTP socket. Run two copies pointed at each other:
//
//	sctpecho -local :9000 -remote 127.0.0.1:9001
//	sctpecho -local :9001 -remote 127.0.0.1:9000
//
// Each side actively connects to the other, which SCTP (like TCP) permits
// as a simultaneous open; there is no passive listen/accept model here,
// matching the one-to-one connected channel this package implements.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	sctp "github.com/flowmesh/sctpchan"
	"github.com/flowmesh/sctpchan/internal/loop"
)

// echoPipeline bounces every received message back out on the same stream,
// and logs lifecycle events to stderr.
type echoPipeline struct {
	ch *sctp.Channel
}

func (p *echoPipeline) MessageReceived(msg sctp.SctpMessage) {
	fmt.Fprintf(os.Stderr, "recv stream=%d ppid=%d %q\n", msg.StreamID, msg.ProtocolID, msg.Payload)
	p.ch.Write(sctp.NewSctpMessage(msg.Payload, msg.StreamID, msg.ProtocolID, msg.Unordered))
}

func (p *echoPipeline) UserEventTriggered(event any) {
	if n, ok := event.(sctp.Notification); ok {
		fmt.Fprintf(os.Stderr, "notification: %s\n", n.Kind)
	}
}

func (p *echoPipeline) ChannelActive() {
	fmt.Fprintln(os.Stderr, "channel active")
}

func (p *echoPipeline) ChannelInactive() {
	fmt.Fprintln(os.Stderr, "channel inactive")
}

func main() {
	local := flag.String("local", "", "local host:port to bind")
	remote := flag.String("remote", "", "remote host:port to connect")
	network := flag.String("network", "ip4", "address family: ip4 or ip6")
	timeout := flag.Duration("connect-timeout", 5*time.Second, "connect timeout")
	flag.Parse()

	if *local == "" || *remote == "" {
		fmt.Fprintln(os.Stderr, "both -local and -remote are required")
		flag.Usage()
		os.Exit(2)
	}

	l, err := loop.New()
	if err != nil {
		fatalf("loop.New: %v", err)
	}
	go func() {
		if err := l.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "loop.Run: %v\n", err)
		}
	}()
	defer l.Close()

	pipeline := &echoPipeline{}
	ch := sctp.NewChannel(*network, pipeline)
	pipeline.ch = ch

	if err := ch.Config().SetOption(sctp.OptConnectTimeoutMs, int(timeout.Milliseconds())); err != nil {
		fatalf("set connect timeout: %v", err)
	}
	if err := ch.Register(l); err != nil {
		fatalf("register: %v", err)
	}

	if _, err := ch.Bind(*local).Wait(); err != nil {
		fatalf("bind: %v", err)
	}
	fmt.Fprintf(os.Stderr, "bound to %s, connecting to %s\n", *local, *remote)

	if _, err := ch.Connect(*remote, nil).Wait(); err != nil {
		fatalf("connect: %v", err)
	}

	ch.StartReadLoop(func(msg sctp.SctpMessage) {})

	fmt.Fprintln(os.Stderr, "connected; type a line to send it on stream 0, ^D to quit")
	reader := make(chan string)
	go func() {
		defer close(reader)
		buf := make([]byte, 4096)
		for {
			n, err := os.Stdin.Read(buf)
			if n > 0 {
				line := strings.TrimRight(string(buf[:n]), "\n")
				if line != "" {
					reader <- line
				}
			}
			if err != nil {
				return
			}
		}
	}()

	for line := range reader {
		ch.Write(sctp.NewSctpMessage([]byte(line), 0, 0, false))
	}

	if _, err := ch.Close().Wait(); err != nil {
		fmt.Fprintf(os.Stderr, "close: %v\n", err)
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
