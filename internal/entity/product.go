package entity

type Product struct {
	ID           int     `json:"id"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	Image        string  `json:"image"`
	Price        float64 `json:"price"`
	CountInStock int     `json:"countInStock"`
}

/*
MySQL schema

CREATE TABLE products (
	id INT AUTO_INCREMENT PRIMARY KEY,
	name VARCHAR(255) NOT NULL,
	description TEXT NOT NULL,
	image VARCHAR(512) NOT NULL DEFAULT '',
	price DECIMAL(10,2) NOT NULL,
	count_in_stock INT NOT NULL DEFAULT 0
);
*/
