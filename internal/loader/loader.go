// Package loader reads the dataset directory into a record store.
package loader

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"observatory/core/records"
	"observatory/core/region"
	"observatory/internal/errors"
)

// Options locate the inputs. Only Dir is required.
type Options struct {
	Dir       string
	GeoJSON   string
	AliasFile string
}

// Loader reads datasets from disk
type Loader struct {
	logger *zap.Logger
}

// New creates a loader; a nil logger discards output
func New(logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{logger: logger}
}

// FileName returns the file a dataset kind is read from
func FileName(k records.Kind) string { return string(k) + ".json" }

// Load reads every collection. Missing dataset files load as empty with a
// warning; malformed files are errors. The alias file, when set, must exist.
func (l *Loader) Load(ctx context.Context, opts Options) (*records.Store, error) {
	if opts.Dir == "" {
		return nil, errors.Input("dataset directory is required")
	}

	normalizer := region.NewMexicoNormalizer()
	if opts.AliasFile != "" {
		aliases, err := region.LoadAliasFile(opts.AliasFile)
		if err != nil {
			return nil, errors.Parsing("failed to read alias file", err).WithContext("path", opts.AliasFile)
		}
		if normalizer, err = normalizer.WithAliases(aliases); err != nil {
			return nil, errors.Wrap(errors.TypeConfig, "invalid alias file", err).
				WithContext("path", opts.AliasFile)
		}
		l.logger.Debug("loaded region aliases", zap.String("path", opts.AliasFile), zap.Int("count", len(aliases)))
	}

	var data records.Dataset
	targets := []struct {
		kind records.Kind
		dst  any
	}{
		{records.KindPolicy, &data.Policies},
		{records.KindFederal, &data.Federal},
		{records.KindFDI, &data.FDI},
		{records.KindEnergy, &data.Energy},
		{records.KindGreenMfg, &data.GreenMfg},
		{records.KindMine, &data.Mines},
		{records.KindPole, &data.Poles},
	}
	for _, t := range targets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := l.readJSON(filepath.Join(opts.Dir, FileName(t.kind)), t.dst); err != nil {
			return nil, err
		}
	}

	geometry, err := l.loadGeometry(ctx, opts.GeoJSON, normalizer)
	if err != nil {
		return nil, err
	}

	store := records.NewStore(normalizer, data, geometry)
	report := store.IngestReport()
	if len(report.FederalUnresolved) > 0 {
		l.logger.Warn("federal program states did not resolve",
			zap.Strings("names", report.FederalUnresolved))
	}
	if len(report.DuplicatePolicyIDs) > 0 {
		l.logger.Warn("duplicate policy ids, keeping first", zap.Ints("ids", report.DuplicatePolicyIDs))
	}
	if n := report.Nulls(); n > 0 {
		l.logger.Warn("null records dropped", zap.Int("count", n), zap.Any("by_kind", report.NullRecords))
	}
	l.logger.Info("datasets loaded",
		zap.String("dir", opts.Dir),
		zap.Int("policies", store.Len(records.KindPolicy)),
		zap.Int("federal", store.Len(records.KindFederal)),
		zap.Int("fdi", store.Len(records.KindFDI)),
		zap.Int("energy", store.Len(records.KindEnergy)),
		zap.Int("greenmfg", store.Len(records.KindGreenMfg)),
		zap.Int("mines", store.Len(records.KindMine)),
		zap.Int("polos", store.Len(records.KindPole)),
	)
	return store, nil
}

func (l *Loader) readJSON(path string, dst any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			l.logger.Warn("dataset file missing, loading empty collection", zap.String("path", path))
			return nil
		}
		return errors.Load("failed to read dataset", err).WithContext("path", path)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return errors.Parsing("failed to decode dataset", err).WithContext("path", path)
	}
	return nil
}

func (l *Loader) loadGeometry(ctx context.Context, path string, n *region.Normalizer) (*region.Geometry, error) {
	if path == "" {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			l.logger.Warn("region boundaries missing", zap.String("path", path))
			return nil, nil
		}
		return nil, errors.Load("failed to read region boundaries", err).WithContext("path", path)
	}
	g, err := region.BindGeometry(raw, n)
	if err != nil {
		return nil, errors.Parsing("failed to decode region boundaries", err).WithContext("path", path)
	}
	if len(g.Unmatched) > 0 {
		l.logger.Warn("boundary features matched no region", zap.Strings("names", g.Unmatched))
	}
	if missing := g.Missing(n.Registry()); len(missing) > 0 {
		l.logger.Warn("regions without boundaries", zap.Int("count", len(missing)))
	}
	return g, nil
}
