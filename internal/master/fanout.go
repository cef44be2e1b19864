// Copyright 2026 The Attachd Authors
// SPDX-License-Identifier: Apache-2.0

package master

// fanOut delivers one PTY read's worth of bytes to every attached
// client. Un-attached sessions get no writes at all — output not yet
// claimed by anyone stays in the kernel PTY buffer instead of piling up
// in user space. A client whose miso pipe is full drops this batch;
// everyone else still gets it.
func (m *Master) fanOut(data []byte) {
	var stale []int

	m.table.forEachAttached(func(index int, s *slot) {
		_, aborted, err := writeNonblocking(s.pair.Miso, data)
		if aborted {
			m.log.Debug("fan-out dropped batch for slow client", "index", index)
			return
		}
		if err != nil {
			m.log.Debug("fan-out write failed, dropping client", "index", index, "error", err)
			stale = append(stale, index)
		}
	})

	for _, index := range stale {
		m.releaseSlot(index)
	}
}
