package mysql

const insertTripRequestSQL = `
INSERT INTO trip_requests
  (id, destination, people_count, days, budget, experience, itinerary_id, created_at)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?)
`

const linkItinerarySQL = `
UPDATE trip_requests SET itinerary_id = ? WHERE id = ?
`

const insertItinerarySQL = `
INSERT INTO itineraries
  (id, trip_request_id, summary_json, total_estimate, created_at)
VALUES
  (?, ?, ?, ?, ?)
`

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

const getTripRequestSQL = `
SELECT id, destination, people_count, days, budget, experience, itinerary_id, created_at
FROM trip_requests
WHERE id = ?
`

const getItinerarySQL = `
SELECT id, trip_request_id, summary_json, total_estimate, created_at
FROM itineraries
WHERE id = ?
`

// Newest first; id breaks ties between rows written in the same millisecond.
const listItinerariesSQL = `
SELECT id, trip_request_id, summary_json, total_estimate, created_at
FROM itineraries
ORDER BY created_at DESC, id DESC
LIMIT ?
`
