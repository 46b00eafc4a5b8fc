package util

import (
	"container/list"
	"os"
	"strconv"
	"sync"

	"gorm.io/gorm"
)

const defaultEmailCacheSize = 1000

// emailLRU caches userID -> email lookups for the request logger so logging
// does not query the users table on every call. Access is serialized by mu;
// the list front is most recently used.
type emailLRU struct {
	mu    sync.Mutex
	order *list.List
	byID  map[uint]*list.Element
	cap   int
}

type emailCacheEntry struct {
	id    uint
	email string
}

func newEmailLRU(capacity int) *emailLRU {
	if capacity <= 0 {
		capacity = defaultEmailCacheSize
	}
	return &emailLRU{
		order: list.New(),
		byID:  make(map[uint]*list.Element, capacity),
		cap:   capacity,
	}
}

func (l *emailLRU) get(id uint) (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	elem, ok := l.byID[id]
	if !ok {
		return "", false
	}
	l.order.MoveToFront(elem)
	return elem.Value.(emailCacheEntry).email, true
}

func (l *emailLRU) put(id uint, email string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if elem, ok := l.byID[id]; ok {
		elem.Value = emailCacheEntry{id: id, email: email}
		l.order.MoveToFront(elem)
		return
	}
	l.byID[id] = l.order.PushFront(emailCacheEntry{id: id, email: email})
	if l.order.Len() <= l.cap {
		return
	}
	oldest := l.order.Back()
	if oldest == nil {
		return
	}
	delete(l.byID, oldest.Value.(emailCacheEntry).id)
	l.order.Remove(oldest)
}

var userCache *emailLRU

// InitUserEmailCache initializes the shared cache. A capacity of zero or
// less falls back to the default size.
func InitUserEmailCache(capacity int) {
	userCache = newEmailLRU(capacity)
}

// InitUserEmailCacheFromEnv sizes the cache from USER_EMAIL_CACHE_SIZE.
func InitUserEmailCacheFromEnv() {
	size, _ := strconv.Atoi(os.Getenv("USER_EMAIL_CACHE_SIZE"))
	InitUserEmailCache(size)
}

// UserEmailCacheGet returns the cached email for a user ID.
func UserEmailCacheGet(userID uint) (string, bool) {
	if userCache == nil {
		return "", false
	}
	return userCache.get(userID)
}

// UserEmailCacheSet records the email for a user ID.
func UserEmailCacheSet(userID uint, email string) {
	if userCache == nil {
		return
	}
	userCache.put(userID, email)
}

// GetUserEmail resolves a user's email through the cache, falling back to
// the database and caching a hit. Unknown or unresolvable IDs yield "".
func GetUserEmail(db *gorm.DB, userID uint) string {
	if userID == 0 {
		return ""
	}
	if email, ok := UserEmailCacheGet(userID); ok {
		return email
	}
	if db == nil {
		return ""
	}

	var row struct{ Email string }
	if err := db.Table("users").Select("email").Where("id = ?", userID).Take(&row).Error; err != nil {
		return ""
	}
	if row.Email != "" {
		UserEmailCacheSet(userID, row.Email)
	}
	return row.Email
}
