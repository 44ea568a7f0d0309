package usecase

import (
	"context"
	"strings"
	"time"
)

// Log is one activity entry of an asset. Entries are append-only.
type Log struct {
	ID        uint
	UID       string
	Action    JobType
	Note      string
	PhotoPath string
	GPS       *Location
	CreatedAt time.Time
}

type ListLogsOption struct {
	UID   string
	Limit int
}

const (
	DefaultLogLimit = 20
	MaxLogLimit     = DetailLogLimit
)

// LogGroupOther collects entries whose action is none of the known job types.
const LogGroupOther = "DIGER"

type LogGroup struct {
	Key   string
	Label string
	Logs  []Log
}

// GroupLogs splits logs into the four job type groups plus DIGER, always in
// that order and always all five, keeping the relative order of entries.
func GroupLogs(logs []Log) []LogGroup {
	groups := make([]LogGroup, 0, len(JobTypes)+1)
	index := make(map[JobType]int, len(JobTypes))
	for i, jt := range JobTypes {
		index[jt] = i
		groups = append(groups, LogGroup{Key: string(jt), Label: jt.Label(), Logs: []Log{}})
	}
	groups = append(groups, LogGroup{Key: LogGroupOther, Label: "DİĞER", Logs: []Log{}})
	other := len(groups) - 1

	for _, l := range logs {
		i := other
		if jt, ok := ParseJobType(string(l.Action)); ok {
			i = index[jt]
		}
		groups[i].Logs = append(groups[i].Logs, l)
	}
	return groups
}

func (u Usecase) ListLogs(ctx context.Context, opt ListLogsOption) ([]Log, []LogGroup, error) {
	if opt.Limit <= 0 {
		opt.Limit = DefaultLogLimit
	}
	if opt.Limit > MaxLogLimit {
		opt.Limit = MaxLogLimit
	}

	if _, err := u.repo.GetAssetByUID(ctx, opt.UID); err != nil {
		return nil, nil, err
	}

	logs, err := u.repo.ListLogs(ctx, opt)
	if err != nil {
		return nil, nil, err
	}
	return logs, GroupLogs(logs), nil
}

// CreateLog appends an entry to uid. The action is stored as given (empty
// becomes ARIZA); a known tag is normalised to its canonical spelling. An
// optional photo is uploaded before the row is written and removed again if
// the write fails.
func (u Usecase) CreateLog(ctx context.Context, l Log, photo *Upload) (Log, error) {
	l.Note = strings.TrimSpace(l.Note)
	if l.Note == "" {
		return Log{}, ErrNoteRequired
	}
	if err := photo.validate(isImage, ErrInvalidPhoto); err != nil {
		return Log{}, err
	}

	action := strings.TrimSpace(string(l.Action))
	if action == "" {
		l.Action = JobTypeFault
	} else if jt, ok := ParseJobType(action); ok {
		l.Action = jt
	} else {
		l.Action = JobType(action)
	}

	if _, err := u.repo.GetAssetByUID(ctx, l.UID); err != nil {
		return Log{}, err
	}

	l.ID = 0
	l.PhotoPath = ""
	if photo != nil {
		key := objectKey(l.UID, "photo", photo.Name, u.now())
		if err := u.upload(ctx, u.photosBucket, key, photo); err != nil {
			return Log{}, err
		}
		l.PhotoPath = key
	}

	created, err := u.repo.CreateLog(ctx, l)
	if err != nil {
		if l.PhotoPath != "" {
			u.discardObject(ctx, u.photosBucket, l.PhotoPath)
		}
		return Log{}, err
	}
	return created, nil
}

func (u Usecase) GetLogPhotoURL(ctx context.Context, id uint) (string, error) {
	l, err := u.repo.GetLogByID(ctx, id)
	if err != nil {
		return "", err
	}
	if l.PhotoPath == "" {
		return "", ErrNoPhoto
	}
	return u.signedURL(ctx, u.photosBucket, l.PhotoPath)
}
