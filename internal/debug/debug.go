package debug

import (
	"fmt"
	"net/http"
	"runtime/pprof"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/viper"

	aurelia "github.com/aurelia-server/aurelia"
)

// Enabled returns whether or not the server was set to debug mode.
func Enabled() bool {
	return viper.GetBool("debugging.pprof_enabled")
}

// PacketLoggingEnabled returns whether packet contents should be dumped to
// the log.
func PacketLoggingEnabled() bool {
	return viper.GetBool("debugging.packet_logging_enabled")
}

// StartPprofServer launches an HTTP server that responds with pprof output
// containing the stack traces of all running goroutines.
func StartPprofServer() {
	webPort := viper.GetString("web.http_port")

	fmt.Println("opening debug port on " + webPort)
	http.HandleFunc("/", func(resp http.ResponseWriter, req *http.Request) {
		_ = pprof.Lookup("goroutine").WriteTo(resp, 1)
	})

	if err := http.ListenAndServe(":"+webPort, nil); err != nil {
		aurelia.Log.Errorf("pprof server exited: %s", err)
	}
}

// DumpPacket writes a packet's decoded contents to the debug log.
func DumpPacket(direction string, packet interface{}) {
	if !PacketLoggingEnabled() {
		return
	}
	aurelia.Log.Debugf("%s packet:\n%s", direction, spew.Sdump(packet))
}
