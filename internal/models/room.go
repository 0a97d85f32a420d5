package models

// Building groups rooms; moving between buildings takes travel time.
type Building struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// BuildingTravel stores the symmetric travel time between two buildings.
// Rows are canonical: BuildingAID < BuildingBID.
type BuildingTravel struct {
	BuildingAID int64 `db:"building_a_id" json:"buildingAId"`
	BuildingBID int64 `db:"building_b_id" json:"buildingBId"`
	Minutes     int   `db:"minutes" json:"minutes"`
}

// CanonicalPair orders two building IDs as (min, max).
func CanonicalPair(a, b int64) (int64, int64) {
	if a > b {
		return b, a
	}
	return a, b
}

// Room is a bookable space in a building.
type Room struct {
	ID         int64  `db:"id" json:"id"`
	BuildingID int64  `db:"building_id" json:"buildingId"`
	Name       string `db:"name" json:"name"`
	Capacity   int    `db:"capacity" json:"capacity"`
}
