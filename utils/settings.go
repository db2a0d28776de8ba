package utils

import (
	"sync"

	"github.com/google/uuid"
)

var Settings = &Hub{}

// Hub holds process wide settings set by the CLI or the embedding service.
type Hub struct {
	sync.RWMutex

	walletHome string // default dir of the file backend

	walletBackupPath string // where scheduled backups are written
	walletBackupTime string // HH:MM of the daily backup
	backupKey        string // export key of the backups
	backupKeyMethod  string
}

func (h *Hub) WalletHome() string {
	h.RLock()
	defer h.RUnlock()
	return h.walletHome
}

func (h *Hub) SetWalletHome(path string) {
	h.Lock()
	defer h.Unlock()
	h.walletHome = path
}

func (h *Hub) WalletBackupTime() string {
	h.RLock()
	defer h.RUnlock()
	return h.walletBackupTime
}

func (h *Hub) SetWalletBackupTime(t string) {
	h.Lock()
	defer h.Unlock()
	h.walletBackupTime = t
}

func (h *Hub) WalletBackupPath() string {
	h.RLock()
	defer h.RUnlock()
	return h.walletBackupPath
}

func (h *Hub) SetWalletBackupPath(path string) {
	h.Lock()
	defer h.Unlock()
	h.walletBackupPath = path
}

// BackupKey returns the export key and its derivation method used for the
// backups.
func (h *Hub) BackupKey() (key, method string) {
	h.RLock()
	defer h.RUnlock()
	return h.backupKey, h.backupKeyMethod
}

func (h *Hub) SetBackupKey(key, method string) {
	h.Lock()
	defer h.Unlock()
	h.backupKey, h.backupKeyMethod = key, method
}

// UUID returns a new random UUID string.
func UUID() string {
	return uuid.New().String()
}
