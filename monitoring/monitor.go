// Package monitoring serves the state of a running simulator over HTTP.
package monitoring

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"slices"
	"strconv"
	"sync"
	"time"

	// Enable profiling
	_ "net/http/pprof"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/lncensor/lncensor/datarecording"
	"github.com/pkg/errors"
	"github.com/rs/xid"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"
	"go.uber.org/zap"
)

// Monitor turns a simulator into a server so that runs can be watched from
// outside.
type Monitor struct {
	portNumber int
	logger     *zap.Logger
	metrics    http.Handler

	stateLock sync.Mutex
	state     any
	records   datarecording.DataReader

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar

	server *http.Server
}

// NewMonitor creates a new Monitor
func NewMonitor() *Monitor {
	return &Monitor{logger: zap.NewNop()}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber != 0 && portNumber < 1000 {
		m.logger.Warn("monitor port not allowed, using a random port",
			zap.Int("port", portNumber))

		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// WithLogger sets the logger.
func (m *Monitor) WithLogger(logger *zap.Logger) *Monitor {
	m.logger = logger
	return m
}

// RegisterMetrics serves h under /metrics.
func (m *Monitor) RegisterMetrics(h http.Handler) {
	m.metrics = h
}

// RegisterRun publishes the value served under /api/run. It is
// serialized on every request.
func (m *Monitor) RegisterRun(state any) {
	m.stateLock.Lock()
	defer m.stateLock.Unlock()

	m.state = state
}

// RegisterRecords serves the mapped tables of reader under
// /api/records/{table}.
func (m *Monitor) RegisterRecords(reader datarecording.DataReader) {
	m.stateLock.Lock()
	defer m.stateLock.Unlock()

	m.records = reader
}

// CreateProgressBar creates a new progress bar.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := &ProgressBar{
		ID:        xid.New().String(),
		Name:      name,
		StartTime: time.Now(),
		Total:     total,
	}

	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	m.progressBars = append(m.progressBars, bar)

	return bar
}

// CompleteProgressBar removes a bar from the list being served.
func (m *Monitor) CompleteProgressBar(pb *ProgressBar) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	newBars := make([]*ProgressBar, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		if b != pb {
			newBars = append(newBars, b)
		}
	}

	m.progressBars = newBars
}

func (m *Monitor) router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/api/progress", m.listProgressBars)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)
	r.HandleFunc("/api/run", m.showRun)
	r.HandleFunc("/api/records/{table}", m.listRecords)
	r.PathPrefix("/debug/pprof/").Handler(http.DefaultServeMux)

	if m.metrics != nil {
		r.Handle("/metrics", m.metrics)
	}

	return r
}

// StartServer starts serving in the background and returns the URL of the
// monitor.
func (m *Monitor) StartServer() (string, error) {
	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	if err != nil {
		return "", errors.Wrap(err, "start monitor")
	}

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)
	fmt.Fprintf(os.Stderr, "Monitoring simulation with %s\n", url)

	m.server = &http.Server{
		Handler:           m.router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		err := m.server.Serve(listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			m.logger.Error("monitor stopped", zap.Error(err))
		}
	}()

	return url, nil
}

// Shutdown stops the server.
func (m *Monitor) Shutdown(ctx context.Context) error {
	if m.server == nil {
		return nil
	}

	return m.server.Shutdown(ctx)
}

func (m *Monitor) writeJSON(w http.ResponseWriter, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		m.fail(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if _, err := w.Write(data); err != nil {
		m.logger.Debug("monitor response not written", zap.Error(err))
	}
}

func (m *Monitor) fail(w http.ResponseWriter, err error) {
	m.logger.Warn("monitor request failed", zap.Error(err))
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.progressBarsLock.Lock()
	bars := append([]*ProgressBar(nil), m.progressBars...)
	m.progressBarsLock.Unlock()

	m.writeJSON(w, bars)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		m.fail(w, err)
		return
	}

	cpuPercent, err := proc.CPUPercent()
	if err != nil {
		m.fail(w, err)
		return
	}

	memoryInfo, err := proc.MemoryInfo()
	if err != nil {
		m.fail(w, err)
		return
	}

	m.writeJSON(w, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memoryInfo.RSS,
	})
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	if err := pprof.StartCPUProfile(buf); err != nil {
		m.fail(w, err)
		return
	}

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	if err != nil {
		m.fail(w, err)
		return
	}

	m.writeJSON(w, prof)
}

func (m *Monitor) showRun(w http.ResponseWriter, _ *http.Request) {
	m.stateLock.Lock()
	defer m.stateLock.Unlock()

	if m.state == nil {
		http.Error(w, "no run registered", http.StatusNotFound)
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(m.state)
	serializer.SetMaxDepth(2)

	w.Header().Set("Content-Type", "application/json")

	if err := serializer.Serialize(w); err != nil {
		m.logger.Warn("state not serialized", zap.Error(err))
	}
}

// DefaultRecordLimit caps the rows of one /api/records response.
const DefaultRecordLimit = 100

type recordsRsp struct {
	Table string `json:"table"`
	Total int    `json:"total"`
	Rows  []any  `json:"rows"`
}

func (m *Monitor) listRecords(w http.ResponseWriter, req *http.Request) {
	m.stateLock.Lock()
	reader := m.records
	m.stateLock.Unlock()

	if reader == nil {
		http.Error(w, "no recording registered", http.StatusNotFound)
		return
	}

	table := mux.Vars(req)["table"]
	if !slices.Contains(reader.ListTables(), table) {
		http.Error(w, "unknown table "+table, http.StatusNotFound)
		return
	}

	params := datarecording.QueryParams{Limit: DefaultRecordLimit}
	query := req.URL.Query()

	for key, dst := range map[string]*int{
		"limit":  &params.Limit,
		"offset": &params.Offset,
	} {
		v := query.Get(key)
		if v == "" {
			continue
		}

		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			http.Error(w, "bad "+key, http.StatusBadRequest)
			return
		}

		*dst = n
	}

	if outcome := query.Get("outcome"); outcome != "" {
		params.Where = "Outcome = ?"
		params.Args = []any{outcome}
	}

	rows, total, err := reader.Query(req.Context(), table, params)
	if err != nil {
		m.fail(w, err)
		return
	}

	m.writeJSON(w, recordsRsp{Table: table, Total: total, Rows: rows})
}
