// Package logger provides a debugging wrapper for ranges.Store implementations.
//
// All operations are logged at DEBUG level together with a short call stack.
// The factory applies the wrapper when the store URL carries logging=true.
package logger

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/kodemon/sats/model"
	"github.com/kodemon/sats/stores/ranges"
	"github.com/kodemon/sats/ulogger"
	"github.com/ordishs/go-utils"
)

type Logger struct {
	logger ulogger.Logger
	store  ranges.Store
}

func New(logger ulogger.Logger, store ranges.Store) ranges.Store {
	return &Logger{
		logger: logger,
		store:  store,
	}
}

// caller returns up to 5 levels of the call stack above the wrapper.
func caller() string {
	var callers []string

	depth := 5

	for i := 0; i < depth; i++ {
		pc, file, line, ok := runtime.Caller(2 + i)
		if !ok {
			break
		}

		folders := strings.Split(file, string(filepath.Separator))
		for len(folders) > 1 && (folders[0] == "github.com" || folders[0] == "kodemon" || folders[0] == "sats") {
			folders = folders[1:]
		}

		file = filepath.Join(folders...)

		funcName := runtime.FuncForPC(pc).Name()
		funcPaths := strings.Split(funcName, "/")
		funcName = funcPaths[len(funcPaths)-1]

		callers = append(callers, fmt.Sprintf("called from %s: %s:%d", funcName, file, line))
	}

	return strings.Join(callers, ",")
}

func outpointString(outpoint *model.OutPoint) string {
	return fmt.Sprintf("%s:%d", utils.ReverseAndHexEncodeSlice(outpoint.TxID[:]), outpoint.Index)
}

func (s *Logger) Health(ctx context.Context, checkLiveness bool) (int, string, error) {
	s.logger.Debugf("[RangesStore][logger][Health] : %s", caller())
	return s.store.Health(ctx, checkLiveness)
}

func (s *Logger) GetLastCommittedHeight(ctx context.Context) (uint64, bool, error) {
	height, found, err := s.store.GetLastCommittedHeight(ctx)
	s.logger.Debugf("[RangesStore][logger][GetLastCommittedHeight] height %d, found %t, err %v : %s", height, found, err, caller())

	return height, found, err
}

func (s *Logger) GetRanges(ctx context.Context, outpoint *model.OutPoint) ([]byte, error) {
	b, err := s.store.GetRanges(ctx, outpoint)
	s.logger.Debugf("[RangesStore][logger][GetRanges] outpoint %s, ranges %d, err %v : %s", outpointString(outpoint), len(b)/model.SatRangeSize, err, caller())

	return b, err
}

func (s *Logger) Commit(ctx context.Context, batch *ranges.Batch) error {
	err := s.store.Commit(ctx, batch)
	s.logger.Debugf("[RangesStore][logger][Commit] height %d, inserts %d, deletes %d, err %v : %s", batch.Height, len(batch.Inserts), len(batch.Deletes), err, caller())

	return err
}

func (s *Logger) Checkpoint(ctx context.Context) error {
	err := s.store.Checkpoint(ctx)
	s.logger.Debugf("[RangesStore][logger][Checkpoint] err %v : %s", err, caller())

	return err
}

func (s *Logger) Close(ctx context.Context) error {
	err := s.store.Close(ctx)
	s.logger.Debugf("[RangesStore][logger][Close] err %v : %s", err, caller())

	return err
}
