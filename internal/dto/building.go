package dto

// CreateBuildingRequest adds a building.
type CreateBuildingRequest struct {
	Name string `json:"name" validate:"required,max=120"`
}

// TravelTimeRequest sets the travel minutes of a building pair.
type TravelTimeRequest struct {
	BuildingAID int64 `json:"buildingAId" validate:"required,gt=0"`
	BuildingBID int64 `json:"buildingBId" validate:"required,gt=0,nefield=BuildingAID"`
	Minutes     int   `json:"minutes" validate:"min=0,max=600"`
}

// ExportWeekQuery selects the week, owner and format of an export.
type ExportWeekQuery struct {
	WeekStart string `form:"weekStart" validate:"required"`
	GroupID   *int64 `form:"groupId" validate:"omitempty,gt=0"`
	TeacherID *int64 `form:"teacherId" validate:"omitempty,gt=0"`
	Format    string `form:"format" validate:"omitempty,oneof=csv pdf"`
}

// EnsurePlansResponse lists plans created for a course.
type EnsurePlansResponse struct {
	Created int `json:"created"`
}
