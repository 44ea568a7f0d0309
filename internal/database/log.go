package database

import (
	"context"
	"time"

	"github.com/ekinotomasyon/officepanel/internal/usecase"
)

type Log struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement"`
	UID       string    `gorm:"column:uid;type:varchar(255);not null;index"`
	Asset     *Asset    `gorm:"foreignKey:UID;references:UID;constraint:OnDelete:CASCADE"`
	Action    *string   `gorm:"column:action;type:varchar(50)"`
	Note      *string   `gorm:"column:note;type:text"`
	PhotoURL  *string   `gorm:"column:photo_url;type:varchar(512)"`
	GPSLat    *float64  `gorm:"column:gps_lat"`
	GPSLng    *float64  `gorm:"column:gps_lng"`
	CreatedAt time.Time `gorm:"column:created_at;index"`
}

func (Log) TableName() string {
	return "logs"
}

func (s *service) ListLogs(ctx context.Context, opt usecase.ListLogsOption) ([]usecase.Log, error) {
	var logs []Log

	db := s.db.WithContext(ctx).Model([]Log{}).Where("uid = ?", opt.UID)
	if opt.Limit > 0 {
		db = db.Limit(opt.Limit)
	}

	err := db.
		Order("created_at DESC").
		Order("id DESC").
		Find(&logs).
		Error
	if err != nil {
		return nil, err
	}

	list := make([]usecase.Log, 0, len(logs))
	for _, l := range logs {
		list = append(list, l.ConvertToUsecase())
	}
	return list, nil
}

func (s *service) GetLogByID(ctx context.Context, id uint) (usecase.Log, error) {
	var l Log

	err := s.db.WithContext(ctx).Where("id = ?", id).First(&l).Error
	if err != nil {
		return usecase.Log{}, translate(err)
	}
	return l.ConvertToUsecase(), nil
}

func (s *service) CreateLog(ctx context.Context, log usecase.Log) (usecase.Log, error) {
	l := Log{
		UID:      log.UID,
		Action:   ref(string(log.Action)),
		Note:     ref(log.Note),
		PhotoURL: ref(log.PhotoPath),
	}
	if log.GPS != nil {
		l.GPSLat = &log.GPS.Lat
		l.GPSLng = &log.GPS.Lng
	}

	err := s.db.WithContext(ctx).Create(&l).Error
	if err != nil {
		return usecase.Log{}, translate(err)
	}
	return l.ConvertToUsecase(), nil
}

// ConvertToUsecase keeps unknown actions verbatim; grouping decides where
// they land.
func (l Log) ConvertToUsecase() usecase.Log {
	action := usecase.JobType(deref(l.Action))
	if parsed, ok := usecase.ParseJobType(string(action)); ok {
		action = parsed
	}

	var gps *usecase.Location
	if l.GPSLat != nil && l.GPSLng != nil {
		gps = &usecase.Location{Lat: *l.GPSLat, Lng: *l.GPSLng}
	}

	return usecase.Log{
		ID:        l.ID,
		UID:       l.UID,
		Action:    action,
		Note:      deref(l.Note),
		PhotoPath: deref(l.PhotoURL),
		GPS:       gps,
		CreatedAt: l.CreatedAt,
	}
}
