package repositories

const productFields = `
  id
  title
  handle
  description
  descriptionHtml
  vendor
  productType
  tags
  totalInventory
  availableForSale
  createdAt
  updatedAt
  priceRange {
    minVariantPrice { amount currencyCode }
  }
  compareAtPriceRange {
    minVariantPrice { amount currencyCode }
  }
  images(first: 5) {
    edges { node { id url altText width height } }
  }
  variants(first: 10) {
    edges {
      node {
        id
        title
        availableForSale
        quantityAvailable
        price { amount currencyCode }
        selectedOptions { name value }
        image { id url altText width height }
      }
    }
  }
  options { id name values }
`

const pageInfoFields = `
  pageInfo { hasNextPage hasPreviousPage startCursor endCursor }
`

const productsQuery = `
query getProducts($first: Int!, $after: String) {
  products(first: $first, after: $after) {
    ` + pageInfoFields + `
    edges { node { ` + productFields + ` } }
  }
}`

const productByHandleQuery = `
query getProductByHandle($handle: String!) {
  product(handle: $handle) {
    ` + productFields + `
    collections(first: 10) {
      edges { node { id handle title } }
    }
  }
}`

const collectionsQuery = `
query getCollections($first: Int!) {
  collections(first: $first) {
    edges {
      node {
        id
        title
        handle
        description
        image { url altText }
      }
    }
  }
}`

const collectionProductsQuery = `
query getCollectionProducts($handle: String!, $first: Int!, $after: String) {
  collection(handle: $handle) {
    id
    title
    handle
    products(first: $first, after: $after) {
      ` + pageInfoFields + `
      edges { node { ` + productFields + ` } }
    }
  }
}`

const adminProductMetafieldsQuery = `
query getProductMetafields($handle: String!) {
  productByIdentifier(identifier: { handle: $handle }) {
    id
    metafields(first: 10) {
      edges { node { id namespace key value type description } }
    }
  }
}`

const metaobjectQuery = `
query getMetaobject($id: ID!) {
  metaobject(id: $id) {
    id
    type
    fields { key value type }
  }
}`
