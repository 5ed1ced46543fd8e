package handlers

import (
	"database/sql"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/mindwellhq/mindwell-backend/internal/database"
	"github.com/mindwellhq/mindwell-backend/internal/models"
)

// BlogPageSize is the fixed page size for blogs-by-category.
const BlogPageSize = 12

const blogSelect = `
	SELECT b.id, b.title, b.content, b.created_at,
		c.id, c.name, c.description, c.img,
		u.id, u.username, u.email, u.first_name, u.last_name, u.role,
		u.therapist_expertise, u.therapist_experience, u.therapist_img, u.therapist_fee
	FROM blogs b
	LEFT JOIN blog_categories c ON c.id = b.category_id
	JOIN users u ON u.id = b.owner_id
`

// ListCategories returns all blog categories.
func ListCategories(w http.ResponseWriter, r *http.Request) {
	rows, err := database.PostgresDB.QueryContext(r.Context(),
		"SELECT id, name, description, img FROM blog_categories ORDER BY name")
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	categories := make([]models.BlogCategory, 0)
	for rows.Next() {
		var c models.BlogCategory
		var description, img sql.NullString
		if err := rows.Scan(&c.ID, &c.Name, &description, &img); err != nil {
			errorJSON(w, http.StatusInternalServerError, "Database error")
			return
		}
		c.Description = description.String
		c.Img = img.String
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		errorJSON(w, http.StatusInternalServerError, "Database error")
		return
	}

	writeJSON(w, http.StatusOK, categories)
}

// BlogsByCategory returns one page (12 items) of a category's blogs, newest
// first. Category match is case-insensitive exact; an unknown category is a
// 404, not an empty list.
func BlogsByCategory(w http.ResponseWriter, r *http.Request) {
	categoryName := strings.TrimSpace(chi.URLParam(r, "categoryName"))

	var categoryID uuid.UUID
	err := database.PostgresDB.QueryRowContext(r.Context(),
		"SELECT id FROM blog_categories WHERE LOWER(name) = LOWER($1)", categoryName).Scan(&categoryID)
	if err != nil {
		if err == sql.ErrNoRows {
			notFound(w)
		} else {
			errorJSON(w, http.StatusInternalServerError, "Database error")
		}
		return
	}

	page := parsePage(r.URL.Query().Get("page"))
	offset := (page - 1) * BlogPageSize

	var total int
	if err := database.PostgresDB.QueryRowContext(r.Context(),
		"SELECT COUNT(*) FROM blogs WHERE category_id = $1", categoryID).Scan(&total); err != nil {
		errorJSON(w, http.StatusInternalServerError, "Database error")
		return
	}

	if pastLastPage(page, total) {
		errorJSON(w, http.StatusNotFound, "Invalid page.")
		return
	}

	rows, err := database.PostgresDB.QueryContext(r.Context(),
		blogSelect+`
		WHERE b.category_id = $1
		ORDER BY b.created_at DESC
		LIMIT $2 OFFSET $3
	`, categoryID, BlogPageSize, offset)
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, "Database error")
		return
	}

	blogs, err := collectBlogs(r, rows)
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, "Database error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"total":     total,
		"page":      page,
		"page_size": BlogPageSize,
		"has_more":  offset+len(blogs) < total,
		"blogs":     blogs,
	})
}

// GetBlog looks up blogs by exact category name and title. Duplicate titles
// within a category are tolerated, so the result is a collection (possibly
// empty), not a single item.
func GetBlog(w http.ResponseWriter, r *http.Request) {
	categoryName := chi.URLParam(r, "category")
	title := chi.URLParam(r, "blog")

	var categoryID uuid.UUID
	err := database.PostgresDB.QueryRowContext(r.Context(),
		"SELECT id FROM blog_categories WHERE name = $1", categoryName).Scan(&categoryID)
	if err != nil {
		if err == sql.ErrNoRows {
			notFound(w)
		} else {
			errorJSON(w, http.StatusInternalServerError, "Database error")
		}
		return
	}

	rows, err := database.PostgresDB.QueryContext(r.Context(),
		blogSelect+`
		WHERE b.category_id = $1 AND b.title = $2
		ORDER BY b.created_at DESC
	`, categoryID, title)
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, "Database error")
		return
	}

	blogs, err := collectBlogs(r, rows)
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, "Database error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"blogs":   blogs,
	})
}

// LatestBlogs returns the 4 most recent blogs across all categories.
func LatestBlogs(w http.ResponseWriter, r *http.Request) {
	rows, err := database.PostgresDB.QueryContext(r.Context(),
		blogSelect+`ORDER BY b.created_at DESC LIMIT 4`)
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, "Database error")
		return
	}

	blogs, err := collectBlogs(r, rows)
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, "Database error")
		return
	}

	writeJSON(w, http.StatusOK, blogs)
}

// parsePage parses a page-number query value; anything unparseable or below 1
// becomes page 1.
func parsePage(raw string) int {
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// pastLastPage reports whether the requested page starts beyond the last row.
// Page 1 is always reachable, even for an empty category.
func pastLastPage(page, total int) bool {
	return page > 1 && (page-1)*BlogPageSize >= total
}

// collectBlogs scans joined blog rows and attaches each blog's images with a
// single follow-up query.
func collectBlogs(r *http.Request, rows *sql.Rows) ([]models.Blog, error) {
	defer rows.Close()

	blogs := make([]models.Blog, 0)
	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		var b models.Blog
		var catID uuid.NullUUID
		var catName, catDesc, catImg sql.NullString
		var owner models.TherapistSummary
		var expertise, img sql.NullString
		var experience, fee sql.NullInt64

		if err := rows.Scan(&b.ID, &b.Title, &b.Content, &b.CreatedAt,
			&catID, &catName, &catDesc, &catImg,
			&owner.ID, &owner.Username, &owner.Email, &owner.FirstName, &owner.LastName, &owner.Role,
			&expertise, &experience, &img, &fee); err != nil {
			return nil, err
		}

		if catID.Valid {
			b.Category = &models.BlogCategory{
				ID:          catID.UUID,
				Name:        catName.String,
				Description: catDesc.String,
				Img:         catImg.String,
			}
		}
		owner.TherapistExpertise = expertise.String
		owner.TherapistExperience = int(experience.Int64)
		owner.TherapistImg = img.String
		owner.TherapistFee = int(fee.Int64)
		b.Owner = &owner
		b.Images = make([]models.BlogImage, 0)

		blogs = append(blogs, b)
		ids = append(ids, b.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(blogs) == 0 {
		return blogs, nil
	}

	idStrs := make([]string, len(ids))
	for i, id := range ids {
		idStrs[i] = id.String()
	}
	imgRows, err := database.PostgresDB.QueryContext(r.Context(),
		"SELECT id, blog_id, image FROM blog_images WHERE blog_id = ANY($1)", pq.Array(idStrs))
	if err != nil {
		return nil, err
	}
	defer imgRows.Close()

	byBlog := make(map[uuid.UUID][]models.BlogImage)
	for imgRows.Next() {
		var img models.BlogImage
		if err := imgRows.Scan(&img.ID, &img.BlogID, &img.Image); err != nil {
			return nil, err
		}
		byBlog[img.BlogID] = append(byBlog[img.BlogID], img)
	}
	if err := imgRows.Err(); err != nil {
		return nil, err
	}

	for i := range blogs {
		if imgs, ok := byBlog[blogs[i].ID]; ok {
			blogs[i].Images = imgs
		}
	}
	return blogs, nil
}
