package sqlstore

// Statements stick to `?` placeholders and portable SQL so the same repo runs
// on MySQL in production and sqlite in tests.

const tourColumns = "id, name, description, price, location, image_urls, duration, includes, created_at"

const reviewColumns = "id, tour_id, user_name, rating, comment, created_at"

const listToursSQL = `
SELECT ` + tourColumns + `
FROM tours
ORDER BY created_at DESC, id DESC
`

const getTourSQL = `
SELECT ` + tourColumns + `
FROM tours
WHERE id = ?
`

const insertTourSQL = `
INSERT INTO tours
  (name, description, price, location, image_urls, duration, includes)
VALUES
  (?, ?, ?, ?, ?, ?, ?)
`

const listReviewsSQL = `
SELECT ` + reviewColumns + `
FROM reviews
WHERE tour_id = ?
ORDER BY created_at DESC, id DESC
`

const getReviewSQL = `
SELECT ` + reviewColumns + `
FROM reviews
WHERE id = ?
`

const insertReviewSQL = `
INSERT INTO reviews
  (tour_id, user_name, rating, comment)
VALUES
  (?, ?, ?, ?)
`
